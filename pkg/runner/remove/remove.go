package remove

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

// Remove deletes one bullet from a video's collection. The bullet is
// addressed by its 1-based position or by an id prefix.
type Remove struct {
	VideoID string
	Ref     string
	ShowID  bool
	Service *app.Service
}

func (r *Remove) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not remove, no service")
	}

	ed, err := r.Service.Editor(r.VideoID)
	if err != nil {
		return err
	}

	b, err := resolve(ed.Bullets(), r.Ref)
	if err != nil {
		return err
	}
	if err := ed.Remove(b.ID); err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: r.ShowID}
	pp.NewLine()
	pp.TitleWithCount(r.VideoID, ed.Len())
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
