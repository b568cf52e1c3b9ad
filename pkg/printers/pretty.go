package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/glyph"
)

// PrettyPrint renders bullet collections as terminal tables.
type PrettyPrint struct {
	ShowID bool
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(color.Output, "")
}

// Title prints a bold, underlined heading.
func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(color.Output, title)
}

// TitleWithCount prints the heading plus a faint bullet count.
func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(color.Output, title)
	_, _ = c.Fprintf(color.Output, " - %d", count)
	switch count {
	case 1:
		_, _ = c.Fprintln(color.Output, " bullet")
	default:
		_, _ = c.Fprintln(color.Output, " bullets")
	}
}

// Bullets prints the collection as a table: confidence marker, timestamp,
// visible duration, and text.
func (pp *PrettyPrint) Bullets(bullets ...editor.Bullet) {
	if len(bullets) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(color.Output, " none\n\n")
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	id := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	if pp.ShowID {
		tbl.AddRow(id.Sprint("id"), "", bold.Sprint("time"), bold.Sprint("dur"), bold.Sprint("text"))
	} else {
		tbl.AddRow("", bold.Sprint("time"), bold.Sprint("dur"), bold.Sprint("text"))
	}
	for _, b := range bullets {
		marker := glyph.BandFor(b.Confidence).String()
		dur := faint.Sprintf("%2.0fs", b.Duration)
		if pp.ShowID {
			tbl.AddRow(id.Sprint(shortID(b.ID)), marker, b.Timestamp, dur, b.Text)
		} else {
			tbl.AddRow(marker, b.Timestamp, dur, b.Text)
		}
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	_, _ = fmt.Fprintln(color.Output, "")
}

// Themes prints the summary's main themes as a faint comma list.
func (pp *PrettyPrint) Themes(themes []string) {
	if len(themes) == 0 {
		return
	}
	f := color.New(color.Faint)
	_, _ = f.Fprintf(color.Output, "themes: %s\n", strings.Join(themes, ", "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
