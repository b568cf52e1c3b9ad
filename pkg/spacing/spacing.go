// Package spacing keeps timeline markers from landing on top of each other
// while a bullet is dragged along the track.
package spacing

import "math"

// DefaultSafety widens the derived minimum gap so markers keep a little
// daylight even at exact spacing.
const DefaultSafety = 1.2

// MinGap derives the smallest allowed distance in seconds between two
// markers: the marker's share of the track width scaled to the video
// length, widened by the safety factor. Marker and track must be measured
// in the same display units. A non-positive safety falls back to
// DefaultSafety; an unknown track width or duration yields no gap.
func MinGap(markerWidth, trackWidth, totalDuration, safety float64) float64 {
	if trackWidth <= 0 || totalDuration <= 0 || markerWidth <= 0 {
		return 0
	}
	if safety <= 0 {
		safety = DefaultSafety
	}
	return markerWidth / trackWidth * totalDuration * safety
}

// Correct resolves a candidate position in seconds against every other
// marker. A candidate within minGap of another marker is pushed to that
// marker's near side, then the result is clamped to the track. One greedy
// pass: dense layouts settle on the clamped bounds instead of erroring, so
// a drag always lands somewhere.
func Correct(candidate float64, others []float64, minGap, totalDuration float64) float64 {
	if minGap > 0 {
		for _, other := range others {
			if math.Abs(candidate-other) < minGap {
				if candidate < other {
					candidate = other - minGap
				} else {
					candidate = other + minGap
				}
			}
		}
	}
	if candidate < 0 {
		candidate = 0
	}
	if totalDuration > 0 && candidate > totalDuration {
		candidate = totalDuration
	}
	return candidate
}
