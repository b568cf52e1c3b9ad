// Package summary holds the wire shapes exchanged with the summarizer
// service. Payloads are validated at the boundary; nothing downstream
// trusts raw JSON.
package summary

import (
	"github.com/go-playground/validator/v10"

	"tableflip.dev/vidmark/pkg/timecode"
)

// MaxTextLen caps annotation text so overlays render predictably.
const MaxTextLen = 80

// BulletPoint is one timestamped annotation as it travels to and from the
// service. Editor-internal identity never crosses the wire.
type BulletPoint struct {
	Timestamp  string  `json:"timestamp" validate:"required,timecode"`
	Text       string  `json:"text" validate:"max=80"`
	Duration   float64 `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Confidence float64 `json:"confidence,omitempty" validate:"gte=0,lte=1"`
}

// VideoSummary is the full annotation set for one video.
type VideoSummary struct {
	BulletPoints []BulletPoint `json:"bullet_points" validate:"required,dive"`
	MainThemes   []string      `json:"main_themes,omitempty"`
}

// VideoMeta reports what the metadata probe knows about a video. Probed is
// false while the probe is still running, in which case DurationSeconds is
// not meaningful yet.
type VideoMeta struct {
	VideoID         string  `json:"video_id" validate:"required"`
	Title           string  `json:"title,omitempty"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0"`
	Probed          bool    `json:"probed"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("timecode", func(fl validator.FieldLevel) bool {
		_, err := timecode.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the wire shape of a summary, including every bullet.
func (s *VideoSummary) Validate() error {
	return validate.Struct(s)
}

// Validate checks a single bullet's wire shape.
func (b *BulletPoint) Validate() error {
	return validate.Struct(b)
}

// Validate checks a probe result's wire shape.
func (m *VideoMeta) Validate() error {
	return validate.Struct(m)
}

// Clone returns a deep copy so callers can hold a summary without aliasing
// the source slices.
func (s VideoSummary) Clone() VideoSummary {
	out := VideoSummary{}
	if len(s.BulletPoints) > 0 {
		out.BulletPoints = append([]BulletPoint(nil), s.BulletPoints...)
	}
	if len(s.MainThemes) > 0 {
		out.MainThemes = append([]string(nil), s.MainThemes...)
	}
	return out
}
