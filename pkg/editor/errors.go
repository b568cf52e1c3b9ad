package editor

import (
	"errors"
	"fmt"

	"tableflip.dev/vidmark/pkg/timecode"
)

var (
	// ErrNotFound reports an id that is not in the collection.
	ErrNotFound = errors.New("editor: bullet not found")

	// ErrNoRegenerator reports a save attempted without a collaborator wired.
	ErrNoRegenerator = errors.New("editor: no regenerator configured")
)

// MinimumCountError rejects a removal that would leave fewer bullets than
// the configured floor. The collection is unchanged.
type MinimumCountError struct {
	Min   int
	Count int
}

func (e *MinimumCountError) Error() string {
	return fmt.Sprintf("editor: cannot remove below %d bullet points (have %d)", e.Min, e.Count)
}

// InsufficientBulletsError blocks a save attempted under the floor.
type InsufficientBulletsError struct {
	Min   int
	Count int
}

func (e *InsufficientBulletsError) Error() string {
	return fmt.Sprintf("editor: need at least %d bullet points to save (have %d)", e.Min, e.Count)
}

// DurationBoundsError rejects a timestamp at or past the end of the video.
type DurationBoundsError struct {
	Seconds int
	Total   float64
}

func (e *DurationBoundsError) Error() string {
	return fmt.Sprintf("editor: timestamp %s is past the end of the video (%.0fs)", timecode.Format(e.Seconds), e.Total)
}
