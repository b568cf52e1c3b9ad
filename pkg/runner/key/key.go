package key

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/vidmark/pkg/glyph"
)

// Key prints the legend: confidence band markers and timeline runes.
type Key struct{}

func (k *Key) Do(ctx context.Context) error {
	bold := color.New(color.Bold)
	title := color.New(color.Bold, color.Underline)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Symbol"), bold.Sprint("Band"), bold.Sprint("Meaning"))
	for _, g := range glyph.DefaultMarkers() {
		if g.Symbol == "" {
			continue
		}
		tbl.AddRow(g.Symbol, g.Noun, g.Meaning)
	}
	_, _ = fmt.Fprintln(color.Output, title.Sprint("\nConfidence"))
	_, _ = fmt.Fprintln(color.Output, tbl)

	tl := uitable.New()
	tl.Separator = "  "
	tl.AddRow(bold.Sprint("Symbol"), bold.Sprint("Meaning"))
	tl.AddRow(glyph.Marker, "marker on the timeline track")
	tl.AddRow(glyph.Grabbed, "marker mid-drag")
	tl.AddRow(glyph.Track, "timeline track")
	tl.AddRow(glyph.Cap, "track end cap")
	_, _ = fmt.Fprintln(color.Output, title.Sprint("\nTimeline"))
	_, _ = fmt.Fprintln(color.Output, tl)

	return nil
}
