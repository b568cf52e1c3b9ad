package glyph

import "fmt"

// Glyph describes one marker rune and how the CLI refers to it.
type Glyph struct {
	Key     string
	Symbol  string
	Noun    string
	Meaning string
	Aliases []string
}

func (g Glyph) String() string {
	return g.Symbol
}

// Band buckets bullet confidence for display.
type Band int

const (
	High Band = iota
	Medium
	Low
	Any
)

// BandFor maps an upstream confidence score onto a display band.
func BandFor(confidence float64) Band {
	switch {
	case confidence >= 0.8:
		return High
	case confidence >= 0.5:
		return Medium
	default:
		return Low
	}
}

// DefaultMarkers lists the marker glyphs indexed by Band.
func DefaultMarkers() []Glyph {
	return []Glyph{
		{
			Key:     "+",
			Symbol:  "●",
			Noun:    "high",
			Meaning: "high confidence",
			Aliases: []string{"high", "hi", "h"},
		},
		{
			Key:     "~",
			Symbol:  "◐",
			Noun:    "medium",
			Meaning: "medium confidence",
			Aliases: []string{"medium", "med", "m"},
		},
		{
			Key:     "-",
			Symbol:  "○",
			Noun:    "low",
			Meaning: "low confidence",
			Aliases: []string{"low", "lo", "l"},
		},
		{
			Key:     "",
			Symbol:  "",
			Noun:    "any",
			Meaning: "any",
			Aliases: []string{"any", "all", "a"},
		},
	}
}

func (b Band) Glyph() Glyph {
	markers := DefaultMarkers()
	if int(b) < 0 || int(b) >= len(markers) {
		return markers[Any]
	}
	return markers[b]
}

func (b Band) String() string {
	return b.Glyph().String()
}

// BandForAlias resolves a CLI filter word to a band.
func BandForAlias(alias string) (Band, error) {
	for i, g := range DefaultMarkers() {
		if g.Noun == alias {
			return Band(i), nil
		}
		for _, a := range g.Aliases {
			if a == alias {
				return Band(i), nil
			}
		}
	}
	return Any, fmt.Errorf("glyph: unknown confidence band %q", alias)
}

// Runes used by the timeline track.
const (
	Track   = "─"
	Marker  = "◆"
	Grabbed = "◈"
	Cap     = "╏"
)
