package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RelativeLuminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func RelativeLuminance(c RGB) float64 {
	rf := gammaCorrect(float64(c.R) / 255.0)
	gf := gammaCorrect(float64(c.G) / 255.0)
	bf := gammaCorrect(float64(c.B) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is maximum contrast (black vs white).
// The result does not depend on argument order.
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(c1, c2 RGB) float64 {
	l1 := RelativeLuminance(c1)
	l2 := RelativeLuminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

func clampUnit(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// Darken moves every channel toward 0 by amount (0-1) of its current value.
// An amount of 0 returns c unchanged and 1 returns black.
func Darken(c RGB, amount float64) RGB {
	amount = clampUnit(amount)
	if amount == 0 {
		return c
	}
	keep := 1 - amount
	return RGB{
		R: roundChannel(float64(c.R) * keep),
		G: roundChannel(float64(c.G) * keep),
		B: roundChannel(float64(c.B) * keep),
	}
}

// Lighten moves every channel toward 255 by amount (0-1) of its remaining headroom.
// An amount of 0 returns c unchanged and 1 returns white.
func Lighten(c RGB, amount float64) RGB {
	amount = clampUnit(amount)
	if amount == 0 {
		return c
	}
	lift := func(v uint8) uint8 {
		return roundChannel(float64(v) + (255-float64(v))*amount)
	}
	return RGB{R: lift(c.R), G: lift(c.G), B: lift(c.B)}
}

// AdjustSaturation scales the HSL saturation of c by (1 + delta), clamped to [0, 1].
// Hue and lightness are preserved up to rounding. A delta of 0 returns c unchanged.
func AdjustSaturation(c RGB, delta float64) RGB {
	if delta == 0 {
		return c
	}
	h, s, l := c.HSL()
	return fromColorful(colorful.Hsl(h, clampUnit(s*(1+delta)), l))
}

// Blend mixes a toward b by t (0-1) in RGB space.
func Blend(a, b RGB, t float64) RGB {
	t = clampUnit(t)
	if t == 0 {
		return a
	}
	return fromColorful(a.colorful().BlendRgb(b.colorful(), t))
}

// IsLight reports whether c is closer to white than to black by relative luminance.
func IsLight(c RGB) bool {
	return RelativeLuminance(c) > 0.5
}
