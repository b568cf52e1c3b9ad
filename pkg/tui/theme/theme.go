package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header   HeaderTheme
	List     ListTheme
	Timeline TimelineTheme
	Status   StatusTheme
}

// HeaderTheme styles the top title line.
type HeaderTheme struct {
	Title  lipgloss.Style
	Themes lipgloss.Style
}

// ListTheme styles the bullet list rows.
type ListTheme struct {
	Title     lipgloss.Style
	Row       lipgloss.Style
	Selected  lipgloss.Style
	Timestamp lipgloss.Style
	Duration  lipgloss.Style
	Error     lipgloss.Style
	Hint      lipgloss.Style
}

// TimelineTheme styles the marker track.
type TimelineTheme struct {
	Track    lipgloss.Style
	Marker   lipgloss.Style
	Selected lipgloss.Style
	Grabbed  lipgloss.Style
	Label    lipgloss.Style
}

// StatusTheme styles the bottom status bar.
type StatusTheme struct {
	Bar     lipgloss.Style
	Mode    lipgloss.Style
	Unsaved lipgloss.Style
	Saving  lipgloss.Style
	Info    lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	faint := lipgloss.Color("244")

	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Bold(true),
			Themes: lipgloss.NewStyle().Foreground(faint),
		},
		List: ListTheme{
			Title:     lipgloss.NewStyle().Bold(true),
			Row:       lipgloss.NewStyle(),
			Selected:  lipgloss.NewStyle().Foreground(accent),
			Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
			Duration:  lipgloss.NewStyle().Foreground(faint),
			Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
			Hint:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
		Timeline: TimelineTheme{
			Track:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Marker:   lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
			Selected: lipgloss.NewStyle().Foreground(accent),
			Grabbed:  lipgloss.NewStyle().Foreground(accent).Bold(true),
			Label:    lipgloss.NewStyle().Foreground(faint),
		},
		Status: StatusTheme{
			Bar:     lipgloss.NewStyle().Foreground(faint),
			Mode:    lipgloss.NewStyle().Bold(true),
			Unsaved: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Saving:  lipgloss.NewStyle().Foreground(accent),
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
		},
	}
}
