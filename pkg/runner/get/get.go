package get

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/glyph"
	"tableflip.dev/vidmark/pkg/printers"
	"tableflip.dev/vidmark/pkg/timecode"
)

// Get prints a video's bullets, optionally filtered by confidence band,
// or lists every pulled session.
type Get struct {
	VideoID    string
	Band       glyph.Band
	ShowID     bool
	ListVideos bool
	Service    *app.Service
}

func (g *Get) Do(ctx context.Context) error {
	if g.Service == nil {
		return errors.New("can not get, no service")
	}

	if g.ListVideos || g.VideoID == "" {
		return g.listVideos(ctx)
	}

	ed, err := g.Service.Editor(g.VideoID)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: g.ShowID}
	pp.NewLine()
	pp.TitleWithCount(g.VideoID, ed.Len())
	pp.Bullets(g.filtered(ed.Bullets())...)
	pp.Themes(ed.Themes())
	return nil
}

func (g *Get) filtered(all []editor.Bullet) []editor.Bullet {
	if g.Band == glyph.Any {
		return all
	}
	c := make([]editor.Bullet, 0, len(all))
	for _, b := range all {
		if glyph.BandFor(b.Confidence) == g.Band {
			c = append(c, b)
		}
	}
	return c
}

func (g *Get) listVideos(ctx context.Context) error {
	sessions, err := g.Service.Sessions(ctx)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{}
	pp.NewLine()
	pp.Title("videos")
	if len(sessions) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(color.Output, " none\n\n")
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	warn := color.New(color.FgYellow)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("video"), bold.Sprint("bullets"), bold.Sprint("length"), bold.Sprint("state"))
	for _, s := range sessions {
		length := faint.Sprint("probing")
		if s.Probed {
			length = timecode.Format(int(s.DurationSeconds))
		}
		state := faint.Sprint("saved")
		if s.Unsaved {
			state = warn.Sprint("unsaved")
		}
		tbl.AddRow(s.VideoID, fmt.Sprintf("%d", len(s.Summary.BulletPoints)), length, state)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	_, _ = fmt.Fprintln(color.Output, "")
	return nil
}
