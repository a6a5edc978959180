// Package colour provides colour values and the colour math used to build
// terminal palettes: hex parsing, WCAG luminance and contrast, and
// darken/lighten/saturation adjustments.
package colour

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an immutable 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// Common colours.
var (
	Black = RGB{R: 0, G: 0, B: 0}
	White = RGB{R: 255, G: 255, B: 255}
)

// FromRGB builds a colour from integer channels, clamping each to [0, 255].
func FromRGB(r, g, b int) RGB {
	return RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// roundChannel rounds a float channel in the 0-255 range to the nearest byte.
func roundChannel(v float64) uint8 {
	return clampChannel(int(math.Round(v)))
}

// ParseHex parses a colour in the form "#rrggbb" or "rrggbb".
// Anything other than exactly six hex digits is a *MalformedColorError.
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return RGB{}, &MalformedColorError{Input: s, Reason: "expected 6 hex digits"}
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return RGB{}, &MalformedColorError{Input: s, Reason: fmt.Sprintf("invalid hex digit %q", digits[i])}
		}
	}

	c, err := colorful.Hex("#" + digits)
	if err != nil {
		return RGB{}, &MalformedColorError{Input: s, Reason: err.Error()}
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// MustParseHex is like ParseHex but panics on malformed input.
// Intended for constants and tests.
func MustParseHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Hex returns the colour as a lowercase "#rrggbb" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// RGBA implements image/color.Color with full opacity.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// colorful converts to a go-colorful value with channels in [0, 1].
func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// HSL returns hue (0-360), saturation (0-1) and lightness (0-1).
func (c RGB) HSL() (h, s, l float64) {
	return c.colorful().Hsl()
}

// MarshalText encodes the colour as its hex string.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex string.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
