package edit

import (
	"context"
	"errors"

	"tableflip.dev/vidmark/pkg/app"
	tuiapp "tableflip.dev/vidmark/pkg/tui/app"
)

// Edit opens the interactive editing surface for a pulled video.
type Edit struct {
	VideoID string
	Service *app.Service
}

func (e *Edit) Do(ctx context.Context) error {
	if e.Service == nil {
		return errors.New("can not edit, no service")
	}
	return tuiapp.Run(ctx, e.Service, e.VideoID)
}
