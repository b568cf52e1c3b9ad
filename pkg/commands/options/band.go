package options

import (
	"tableflip.dev/vidmark/pkg/glyph"
)

// BandOptions filters printed bullets by confidence band.
type BandOptions struct {
	Band glyph.Band
}

// ResolveBandArg resolves a positional band alias, defaulting to Any.
func ResolveBandArg(args []string, o *BandOptions) error {
	if len(args) == 0 {
		o.Band = glyph.Any
		return nil
	}
	band, err := glyph.BandForAlias(args[0])
	if err != nil {
		return err
	}
	o.Band = band
	return nil
}
