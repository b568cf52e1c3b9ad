package add

import (
	"context"
	"errors"

	"tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/printers"
)

// Add appends a bullet to a video's collection and commits the provided
// field values over the defaults.
type Add struct {
	VideoID   string
	Timestamp string
	Text      string
	Duration  float64
	ShowID    bool
	Service   *app.Service
}

func (a *Add) Do(ctx context.Context) error {
	if a.Service == nil {
		return errors.New("can not add, no service")
	}

	ed, err := a.Service.Editor(a.VideoID)
	if err != nil {
		return err
	}

	b := ed.Add()
	patch := editor.Patch{}
	if a.Timestamp != "" {
		patch.Timestamp = &a.Timestamp
	}
	if a.Text != "" {
		patch.Text = &a.Text
	}
	if a.Duration > 0 {
		patch.Duration = &a.Duration
	}
	if err := ed.Update(b.ID, patch, true); err != nil {
		// The defaulted bullet stays; drop it rather than leave a
		// stray "New bullet point" behind a failed add.
		_ = ed.Remove(b.ID)
		return err
	}

	pp := printers.PrettyPrint{ShowID: a.ShowID}
	pp.NewLine()
	pp.TitleWithCount(a.VideoID, ed.Len())
	pp.Bullets(ed.Bullets()...)
	return nil
}
