// Package statusbar renders the one-line footer: focus mode, the
// unsaved indicator, save progress, and transient status messages.
package statusbar

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/tui/events"
	"tableflip.dev/vidmark/pkg/tui/theme"
)

// Model is the status bar state.
type Model struct {
	id    events.ComponentID
	th    theme.Theme
	width int

	mode    string
	unsaved bool
	saving  bool
	// progress is the regenerate job percentage, -1 when no job runs.
	progress int

	message string
	level   events.StatusLevel
}

// NewModel builds an empty status bar.
func NewModel() *Model {
	return &Model{
		id:       events.ComponentID("statusbar"),
		th:       theme.Default(),
		progress: -1,
	}
}

// ID returns the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetWidth sets the render width.
func (m *Model) SetWidth(width int) {
	if width < 0 {
		width = 0
	}
	m.width = width
}

// SetMode names the pane that owns keyboard focus.
func (m *Model) SetMode(mode string) {
	m.mode = mode
}

// SetSaving flags a save in flight. Clearing it also drops any job
// progress.
func (m *Model) SetSaving(saving bool) {
	m.saving = saving
	if !saving {
		m.progress = -1
	}
}

// Update tracks the flags and messages other components emit.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case events.UnsavedMsg:
		m.unsaved = msg.Unsaved
	case events.JobProgressMsg:
		if msg.Job.Status == api.JobFailed {
			m.message = fmt.Sprintf("regenerate failed: %s", msg.Job.Error)
			m.level = events.LevelError
			break
		}
		m.progress = msg.Job.Progress
	case events.StatusMsg:
		m.message = msg.Text
		m.level = msg.Level
	}
	return m, nil
}

// ClearMessage drops the transient status message.
func (m *Model) ClearMessage() {
	m.message = ""
	m.level = events.LevelInfo
}

// View renders the bar.
func (m *Model) View() string {
	parts := []string{m.th.Status.Mode.Render(strings.ToUpper(m.mode))}

	if m.saving {
		label := "saving"
		if m.progress >= 0 {
			label = fmt.Sprintf("saving %d%%", m.progress)
		}
		parts = append(parts, m.th.Status.Saving.Render(label))
	}
	if m.unsaved {
		parts = append(parts, m.th.Status.Unsaved.Render("● unsaved"))
	}
	if m.message != "" {
		style := m.th.Status.Info
		switch m.level {
		case events.LevelWarn:
			style = m.th.Status.Warn
		case events.LevelError:
			style = m.th.Status.Error
		}
		parts = append(parts, style.Render(m.message))
	}

	line := " " + strings.Join(parts, m.th.Status.Bar.Render(" │ "))
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return line
}
