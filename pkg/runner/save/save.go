package save

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/app"
)

// Save pushes a video's committed bullets to the service and follows
// the regenerate job until it finishes.
type Save struct {
	VideoID string
	Service *app.Service
}

func (s *Save) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("can not save, no service")
	}

	sess, err := s.Service.Session(s.VideoID)
	if err != nil {
		return err
	}
	if !sess.Unsaved {
		f := color.New(color.Faint)
		_, _ = f.Fprintf(color.Output, "%s has no unsaved changes\n", s.VideoID)
		return nil
	}

	ed, err := s.Service.Editor(s.VideoID)
	if err != nil {
		return err
	}

	faint := color.New(color.Faint)
	s.Service.OnJob = func(j api.Job) {
		_, _ = faint.Fprintf(color.Output, "regenerate %s %s %d%%\n", j.ID, j.Status, j.Progress)
	}

	if err := ed.Save(ctx); err != nil {
		return err
	}

	// The editor was freshly loaded, so its own unsaved flag never
	// flipped; clear the session's flag here.
	sess.Unsaved = false
	if err := s.Service.Persistence.Put(sess); err != nil {
		return err
	}

	g := color.New(color.FgGreen)
	_, _ = fmt.Fprintf(color.Output, "%s %s\n", g.Sprint("saved"), s.VideoID)
	return nil
}
