package palette

import "github.com/jmylchreest/pigment/internal/colour"

// EnforceContrast raises every numbered slot except color0 to at least target
// contrast against the background.
//
// Each failing slot is stepped in luminance away from the background until it
// passes, reaches black or white, or exhausts cfg.ContrastMaxSteps. Slots
// that already pass are returned unchanged. Background and cursor are never
// modified; foreground is re-synced to color15.
//
// When some slots fall short the adjusted palette is returned together with a
// *ContrastIncompleteError. An out-of-range target returns the palette
// unchanged and an error wrapping ErrInvalidRequest.
func EnforceContrast(p Palette, target float64, cfg Config) (Palette, error) {
	if target < MinContrast || target > MaxContrast {
		return p, invalidRequest("contrast %.2f out of range [%.0f, %.0f]", target, MinContrast, MaxContrast)
	}

	bg := p.Special.Background
	var short []Shortfall
	for i := 1; i < Slots; i++ {
		c, ok := raiseContrast(p.Colors[i], bg, target, cfg)
		p.Colors[i] = c
		if !ok {
			short = append(short, Shortfall{Slot: i, Achieved: colour.ContrastRatio(c, bg)})
		}
	}
	p.Special.Foreground = p.Colors[15]

	if len(short) > 0 {
		return p, &ContrastIncompleteError{Target: target, Slots: short}
	}
	return p, nil
}

// raiseContrast steps c until it reaches target against bg. It reports false
// when the target could not be reached.
func raiseContrast(c, bg colour.RGB, target float64, cfg Config) (colour.RGB, bool) {
	if colour.ContrastRatio(c, bg) >= target {
		return c, true
	}

	lighten := contrastDirection(c, bg, target)
	for range cfg.ContrastMaxSteps {
		next := stepAway(c, lighten, cfg.ContrastStep)
		if next == c {
			return c, false
		}
		c = next
		if colour.ContrastRatio(c, bg) >= target {
			return c, true
		}
	}
	return c, false
}

// contrastDirection reports whether c should be lightened. The default is
// away from the background's luminance; if that end of the scale cannot reach
// target but the other can, the other end is used.
func contrastDirection(c, bg colour.RGB, target float64) bool {
	bgLum := colour.RelativeLuminance(bg)
	cLum := colour.RelativeLuminance(c)

	lighten := cLum > bgLum || (cLum == bgLum && bgLum < 0.5)
	if lighten && colour.ContrastRatio(colour.White, bg) < target &&
		colour.ContrastRatio(colour.Black, bg) >= target {
		return false
	}
	if !lighten && colour.ContrastRatio(colour.Black, bg) < target &&
		colour.ContrastRatio(colour.White, bg) >= target {
		return true
	}
	return lighten
}

// stepAway moves c one step toward white (lighten) or black. When rounding
// swallows the step each channel not yet at its limit moves by one unit, so
// the loop always progresses until c hits the extreme.
func stepAway(c colour.RGB, lighten bool, amount float64) colour.RGB {
	var next colour.RGB
	if lighten {
		next = colour.Lighten(c, amount)
	} else {
		next = colour.Darken(c, amount)
	}
	if next != c {
		return next
	}

	nudge := func(v uint8) uint8 {
		switch {
		case lighten && v < 255:
			return v + 1
		case !lighten && v > 0:
			return v - 1
		}
		return v
	}
	return colour.RGB{R: nudge(c.R), G: nudge(c.G), B: nudge(c.B)}
}
