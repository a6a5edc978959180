package palette

import (
	"sort"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/colour"
)

// Number of hue slots (colours 1-6) taken from the sample.
const hueSlots = 6

// Normalize maps a raw sample of any length to the 16-slot palette.
//
// Samples shorter than 16 are extended cyclically. The darkest candidate
// (lightest for Light) becomes the background, colours 1-6 take the
// mid-range candidates in sample order, 7 and 15 are pinned to white (black
// for Light), and 8-14 repeat 0-6 with color8 stepped away from color0.
// An empty sample is an *backend.InsufficientColoursError.
func Normalize(raw []colour.RGB, polarity Polarity, cols16 Cols16Mode, cfg Config) (Palette, error) {
	if len(raw) == 0 {
		return Palette{}, &backend.InsufficientColoursError{Found: 0, Minimum: 1}
	}

	cands := candidates(raw)
	ranked := rankByLuminance(cands)
	darkest, lightest := ranked[0], ranked[len(ranked)-1]

	var p Palette
	var fixed colour.RGB
	if polarity == Light {
		p.Colors[0] = colour.Lighten(cands[lightest], cfg.BackgroundShift)
		p.Colors[8] = colour.Darken(p.Colors[0], cfg.BrightStep)
		fixed = colour.Black
	} else {
		p.Colors[0] = colour.Darken(cands[darkest], cfg.BackgroundShift)
		p.Colors[8] = colour.Lighten(p.Colors[0], cfg.BrightStep)
		fixed = colour.White
	}

	hues := midRange(cands, darkest, lightest)
	for i := range hueSlots {
		c := hues[i%len(hues)]
		p.Colors[1+i] = c
		p.Colors[9+i] = c
	}
	p.Colors[7] = fixed
	p.Colors[15] = fixed

	p = applyCols16(p, cols16, cfg.Cols16Ratio)

	p.Special = Special{
		Background: p.Colors[0],
		Foreground: p.Colors[15],
		Cursor:     p.Colors[15],
	}
	return p, nil
}

// candidates returns at least Slots colours, repeating raw by index modulo
// its length when it is short. raw is never modified.
func candidates(raw []colour.RGB) []colour.RGB {
	n := max(len(raw), Slots)
	out := make([]colour.RGB, n)
	for i := range out {
		out[i] = raw[i%len(raw)]
	}
	return out
}

// rankByLuminance returns candidate indices ordered darkest first.
// Ties keep sample order so the ranking is deterministic.
func rankByLuminance(cands []colour.RGB) []int {
	lum := make([]float64, len(cands))
	idx := make([]int, len(cands))
	for i, c := range cands {
		lum[i] = colour.RelativeLuminance(c)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lum[idx[a]] < lum[idx[b]]
	})
	return idx
}

// midRange returns the candidates in sample order without any occurrence of
// the darkest or lightest colour. When nothing else is left it returns cands.
func midRange(cands []colour.RGB, darkest, lightest int) []colour.RGB {
	dark, light := cands[darkest], cands[lightest]
	out := make([]colour.RGB, 0, len(cands))
	for _, c := range cands {
		if c == dark || c == light {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

// applyCols16 blends colours 0 and 8 toward black or white.
func applyCols16(p Palette, mode Cols16Mode, ratio float64) Palette {
	var target colour.RGB
	switch mode {
	case Cols16Darken:
		target = colour.Black
	case Cols16Lighten:
		target = colour.White
	default:
		return p
	}
	p.Colors[0] = colour.Blend(p.Colors[0], target, ratio)
	p.Colors[8] = colour.Blend(p.Colors[8], target, ratio)
	return p
}
