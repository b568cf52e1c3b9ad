package spacing

import (
	"math"
	"testing"
)

func TestMinGap(t *testing.T) {
	got := MinGap(8, 800, 600, 0)
	if want := 8.0 / 800.0 * 600.0 * DefaultSafety; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMinGapUnknownTrack(t *testing.T) {
	if got := MinGap(8, 0, 600, 0); got != 0 {
		t.Fatalf("expected 0 for unknown track, got %v", got)
	}
	if got := MinGap(8, 800, 0, 0); got != 0 {
		t.Fatalf("expected 0 for unknown duration, got %v", got)
	}
}

func TestMinGapCustomSafety(t *testing.T) {
	got := MinGap(10, 100, 300, 1.0)
	if want := 30.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCorrectPushesPastNeighbor(t *testing.T) {
	// Marker at 10s, gap of 8s: a candidate at 11s lands inside the gap
	// on the far side and gets pushed out to 18s.
	got := Correct(11, []float64{10}, 8, 60)
	if got != 18 {
		t.Fatalf("expected 18, got %v", got)
	}
}

func TestCorrectPushesBeforeNeighbor(t *testing.T) {
	got := Correct(27, []float64{30}, 8, 60)
	if got != 22 {
		t.Fatalf("expected 22, got %v", got)
	}
}

func TestCorrectExactHitGoesAfter(t *testing.T) {
	got := Correct(30, []float64{30}, 8, 60)
	if got != 38 {
		t.Fatalf("expected 38, got %v", got)
	}
}

func TestCorrectClampsToTrack(t *testing.T) {
	if got := Correct(-4, nil, 0, 60); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := Correct(75, nil, 0, 60); got != 60 {
		t.Fatalf("expected clamp to 60, got %v", got)
	}
	// Pushed past the start by a neighbor near zero.
	if got := Correct(2, []float64{5}, 8, 60); got != 0 {
		t.Fatalf("expected floor at 0, got %v", got)
	}
}

func TestCorrectLeavesClearCandidates(t *testing.T) {
	got := Correct(25, []float64{10, 40}, 8, 60)
	if got != 25 {
		t.Fatalf("expected untouched 25, got %v", got)
	}
}

func TestCorrectKeepsNeighborsApart(t *testing.T) {
	// Markers at least two gaps apart, so a single greedy pass can always
	// settle every candidate.
	others := []float64{10, 30, 50}
	for candidate := 0.0; candidate <= 60; candidate += 0.5 {
		got := Correct(candidate, others, 6, 60)
		if got == 0 || got == 60 {
			continue
		}
		for _, other := range others {
			if math.Abs(got-other) < 6 {
				t.Fatalf("candidate %v corrected to %v, still within 6 of %v", candidate, got, other)
			}
		}
	}
}
