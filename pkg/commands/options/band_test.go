package options

import (
	"testing"

	"tableflip.dev/vidmark/pkg/glyph"
)

func TestResolveBandArgDefaultsToAny(t *testing.T) {
	o := &BandOptions{}
	if err := ResolveBandArg(nil, o); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if o.Band != glyph.Any {
		t.Fatalf("expected Any with no positional arg, got %v", o.Band)
	}
}

func TestResolveBandArgAliases(t *testing.T) {
	tests := map[string]glyph.Band{
		"high":   glyph.High,
		"hi":     glyph.High,
		"medium": glyph.Medium,
		"m":      glyph.Medium,
		"low":    glyph.Low,
		"all":    glyph.Any,
	}
	for alias, want := range tests {
		o := &BandOptions{}
		if err := ResolveBandArg([]string{alias}, o); err != nil {
			t.Fatalf("resolve %q: %v", alias, err)
		}
		if o.Band != want {
			t.Fatalf("alias %q resolved to %v, want %v", alias, o.Band, want)
		}
	}
}

func TestResolveBandArgRejectsUnknown(t *testing.T) {
	o := &BandOptions{}
	if err := ResolveBandArg([]string{"banana"}, o); err == nil {
		t.Fatal("expected an error for an unknown band alias")
	}
}
