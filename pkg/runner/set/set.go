package set

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/printers"
)

// Set edits one bullet's fields, or swaps its position with a neighbor.
// The bullet is addressed by its 1-based position or by an id prefix.
type Set struct {
	VideoID   string
	Ref       string
	Timestamp string
	Text      string
	Duration  float64
	Up        bool
	Down      bool
	ShowID    bool
	Service   *app.Service
}

func (s *Set) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("can not set, no service")
	}

	ed, err := s.Service.Editor(s.VideoID)
	if err != nil {
		return err
	}

	b, err := resolve(ed.Bullets(), s.Ref)
	if err != nil {
		return err
	}

	switch {
	case s.Up:
		err = ed.MoveUp(b.ID)
	case s.Down:
		err = ed.MoveDown(b.ID)
	default:
		patch := editor.Patch{}
		if s.Timestamp != "" {
			patch.Timestamp = &s.Timestamp
		}
		if s.Text != "" {
			patch.Text = &s.Text
		}
		if s.Duration > 0 {
			patch.Duration = &s.Duration
		}
		if patch.Timestamp == nil && patch.Text == nil && patch.Duration == nil {
			return errors.New("nothing to set, provide --time, --text, --duration, --up, or --down")
		}
		err = ed.Update(b.ID, patch, true)
	}
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: s.ShowID}
	pp.NewLine()
	pp.TitleWithCount(s.VideoID, ed.Len())
	pp.Bullets(ed.Bullets()...)
	return nil
}

// resolve finds a bullet by 1-based position or id prefix.
func resolve(bullets []editor.Bullet, ref string) (editor.Bullet, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return editor.Bullet{}, errors.New("a bullet position or id is required")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(bullets) {
			return editor.Bullet{}, fmt.Errorf("bullet %d out of range 1..%d", n, len(bullets))
		}
		return bullets[n-1], nil
	}
	for _, b := range bullets {
		if strings.HasPrefix(b.ID, ref) {
			return b, nil
		}
	}
	return editor.Bullet{}, fmt.Errorf("no bullet matches %q", ref)
}
