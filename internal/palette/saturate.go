package palette

import "github.com/jmylchreest/pigment/internal/colour"

// AdjustSaturation scales the saturation of every numbered slot by (1+delta),
// keeping hue and lightness. Special colours are not touched. A delta of 0
// returns the palette unchanged.
func AdjustSaturation(p Palette, delta float64) Palette {
	if delta == 0 {
		return p
	}
	for i, c := range p.Colors {
		p.Colors[i] = colour.AdjustSaturation(c, delta)
	}
	return p
}
