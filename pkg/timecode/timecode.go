package timecode

import (
	"fmt"
	"regexp"
	"strconv"
)

var displayPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// FormatError reports a display string that is not in MM:SS shape.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timecode: %q is not a MM:SS timestamp", e.Input)
}

// Parse converts an MM:SS display string into whole seconds. Both columns
// are read as plain integers, so "12:99" is a legal 819 seconds; keeping
// the seconds column inside the video belongs to the duration bound, not
// the codec.
func Parse(display string) (int, error) {
	if !displayPattern.MatchString(display) {
		return 0, &FormatError{Input: display}
	}
	mins, err := strconv.Atoi(display[:2])
	if err != nil {
		return 0, &FormatError{Input: display}
	}
	secs, err := strconv.Atoi(display[3:])
	if err != nil {
		return 0, &FormatError{Input: display}
	}
	return mins*60 + secs, nil
}

// Format renders whole seconds as a zero-padded MM:SS display string.
// Negative input renders as 00:00.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// InBounds reports whether a timestamp in seconds sits inside the known
// video duration. A zero or unset duration leaves the bound inert, since
// the metadata probe may complete after the summary loads.
func InBounds(seconds int, totalDuration float64) bool {
	if totalDuration <= 0 {
		return true
	}
	return float64(seconds) < totalDuration
}
