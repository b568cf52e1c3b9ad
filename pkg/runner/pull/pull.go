package pull

import (
	"context"
	"errors"

	"github.com/fatih/color"

	"tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/printers"
)

// Pull fetches a video's summary and metadata into a local session.
type Pull struct {
	VideoID string
	ShowID  bool
	Service *app.Service
}

func (p *Pull) Do(ctx context.Context) error {
	if p.Service == nil {
		return errors.New("can not pull, no service")
	}

	sess, err := p.Service.Pull(ctx, p.VideoID)
	if err != nil {
		return err
	}

	ed, err := p.Service.Editor(p.VideoID)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: p.ShowID}
	pp.NewLine()
	pp.TitleWithCount(p.VideoID, ed.Len())
	pp.Bullets(ed.Bullets()...)
	pp.Themes(ed.Themes())

	if !sess.Probed {
		f := color.New(color.Faint)
		_, _ = f.Fprintln(color.Output, "duration probe still running, timestamps unbounded for now")
	}
	return nil
}
