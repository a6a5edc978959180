// Package palette turns a raw colour sample into a canonical 16-slot
// terminal palette and applies the optional contrast and saturation
// adjustments.
//
// The pipeline is Normalize -> EnforceContrast -> AdjustSaturation. Each stage
// takes a Palette by value and returns a new one, so no stage ever observes a
// partially adjusted palette.
package palette

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/pigment/internal/colour"
)

// Slots is the number of numbered colours in a palette.
const Slots = 16

// Polarity selects whether the palette is tuned for a dark or a light background.
type Polarity int

const (
	// Dark builds a palette for a dark background.
	Dark Polarity = iota
	// Light builds a palette for a light background.
	Light
)

// String returns the polarity name.
func (p Polarity) String() string {
	if p == Light {
		return "light"
	}
	return "dark"
}

// ParsePolarity converts "dark" or "light" to a Polarity.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(s) {
	case "dark", "":
		return Dark, nil
	case "light":
		return Light, nil
	default:
		return Dark, fmt.Errorf("invalid polarity: %s (valid: dark, light)", s)
	}
}

// Cols16Mode is the 16-colour post-process applied to colours 0 and 8.
type Cols16Mode string

const (
	// Cols16Off leaves colours 0 and 8 as assigned.
	Cols16Off Cols16Mode = "off"
	// Cols16Darken biases colours 0 and 8 toward black.
	Cols16Darken Cols16Mode = "darken"
	// Cols16Lighten biases colours 0 and 8 toward white.
	Cols16Lighten Cols16Mode = "lighten"
)

// ParseCols16Mode converts a mode name to a Cols16Mode. The empty string is off.
func ParseCols16Mode(s string) (Cols16Mode, error) {
	switch m := Cols16Mode(strings.ToLower(s)); m {
	case "":
		return Cols16Off, nil
	case Cols16Off, Cols16Darken, Cols16Lighten:
		return m, nil
	default:
		return Cols16Off, fmt.Errorf("invalid cols16 mode: %s (valid: off, darken, lighten)", s)
	}
}

// Special holds the named colours that sit outside the numbered slots.
type Special struct {
	Background colour.RGB `json:"background"`
	Foreground colour.RGB `json:"foreground"`
	Cursor     colour.RGB `json:"cursor"`
}

// Palette is the canonical output: 16 numbered colours plus the special group.
// The fixed-size array guarantees that every slot is populated.
type Palette struct {
	Wallpaper string
	Special   Special
	Colors    [Slots]colour.RGB
}

// Hex returns the numbered colours as hex strings in slot order.
func (p Palette) Hex() []string {
	out := make([]string, Slots)
	for i, c := range p.Colors {
		out[i] = c.Hex()
	}
	return out
}

// WithBackground returns a copy with background and color0 set to c.
func (p Palette) WithBackground(c colour.RGB) Palette {
	p.Special.Background = c
	p.Colors[0] = c
	return p
}

// WithForeground returns a copy with foreground and color15 set to c. The
// cursor keeps the colour the pipeline gave it.
func (p Palette) WithForeground(c colour.RGB) Palette {
	p.Special.Foreground = c
	p.Colors[15] = c
	return p
}

// String returns a human-readable listing of the palette.
func (p Palette) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "background  %s\n", p.Special.Background.Hex())
	fmt.Fprintf(&b, "foreground  %s\n", p.Special.Foreground.Hex())
	fmt.Fprintf(&b, "cursor      %s\n", p.Special.Cursor.Hex())
	for i, h := range p.Hex() {
		fmt.Fprintf(&b, "color%-6d %s\n", i, h)
	}
	return b.String()
}

// slotColours serialises as {"color0": ..., "color15": ...} in slot order.
type slotColours [Slots]colour.RGB

func (s slotColours) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote("color" + strconv.Itoa(i)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Quote(c.Hex()))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *slotColours) UnmarshalJSON(data []byte) error {
	var named map[string]colour.RGB
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}
	for i := range s {
		key := "color" + strconv.Itoa(i)
		c, ok := named[key]
		if !ok {
			return fmt.Errorf("palette is missing %s", key)
		}
		s[i] = c
	}
	return nil
}

type paletteJSON struct {
	Wallpaper string      `json:"wallpaper"`
	Special   Special     `json:"special"`
	Colors    slotColours `json:"colors"`
}

// MarshalJSON encodes the palette in the colors.json layout.
func (p Palette) MarshalJSON() ([]byte, error) {
	return json.Marshal(paletteJSON{
		Wallpaper: p.Wallpaper,
		Special:   p.Special,
		Colors:    slotColours(p.Colors),
	})
}

// UnmarshalJSON decodes the colors.json layout. All 16 slots are required.
func (p *Palette) UnmarshalJSON(data []byte) error {
	var raw paletteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode palette: %w", err)
	}
	p.Wallpaper = raw.Wallpaper
	p.Special = raw.Special
	p.Colors = raw.Colors
	return nil
}
