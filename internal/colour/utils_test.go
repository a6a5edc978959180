package colour

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "with hash", input: "#1a2b3c", want: RGB{R: 0x1a, G: 0x2b, B: 0x3c}},
		{name: "without hash", input: "ff8000", want: RGB{R: 255, G: 128, B: 0}},
		{name: "uppercase", input: "#ABCDEF", want: RGB{R: 0xab, G: 0xcd, B: 0xef}},
		{name: "black", input: "#000000", want: Black},
		{name: "white", input: "#ffffff", want: White},
		{name: "short form", input: "#fff", wantErr: true},
		{name: "too long", input: "#1234567", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "bad digit", input: "#12345g", wantErr: true},
		{name: "signed digits", input: "#+1+1+1", wantErr: true},
		{name: "double hash", input: "##12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHex(%q) expected error, got %v", tt.input, got)
				}
				if !errors.Is(err, ErrMalformedColor) {
					t.Errorf("ParseHex(%q) error %v does not match ErrMalformedColor", tt.input, err)
				}
				var mce *MalformedColorError
				if !errors.As(err, &mce) || mce.Input != tt.input {
					t.Errorf("ParseHex(%q) error %v is not a MalformedColorError for the input", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHex(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	// Step through a spread of channel values rather than all 16M colours.
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 51 {
				h := fmt.Sprintf("#%02x%02x%02x", r, g, b)
				c, err := ParseHex(h)
				if err != nil {
					t.Fatalf("ParseHex(%q) unexpected error: %v", h, err)
				}
				if got := c.Hex(); got != h {
					t.Fatalf("round trip %q -> %q", h, got)
				}
			}
		}
	}
}

func TestFromRGBClamps(t *testing.T) {
	got := FromRGB(-10, 300, 128)
	want := RGB{R: 0, G: 255, B: 128}
	if got != want {
		t.Errorf("FromRGB() = %+v, want %+v", got, want)
	}
	if got.Hex() != "#00ff80" {
		t.Errorf("Hex() = %s, want #00ff80", got.Hex())
	}
}

func TestRelativeLuminance(t *testing.T) {
	tests := []struct {
		hex  string
		want float64
	}{
		{"#000000", 0.00},
		{"#ffffff", 1.00},
		{"#808080", 0.22},
		{"#ff0000", 0.21},
		{"#00ff00", 0.72},
		{"#0000ff", 0.07},
		{"#1a1a1a", 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got := RelativeLuminance(MustParseHex(tt.hex))
			if math.Abs(got-tt.want) > 0.005 {
				t.Errorf("RelativeLuminance(%s) = %.4f, want %.2f", tt.hex, got, tt.want)
			}
		})
	}
}

func TestContrastRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"#000000", "#ffffff", 21.00},
		{"#ffffff", "#ffffff", 1.00},
		{"#777777", "#ffffff", 4.48},
		{"#0000ff", "#ffffff", 8.59},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			a, b := MustParseHex(tt.a), MustParseHex(tt.b)
			got := ContrastRatio(a, b)
			if math.Abs(got-tt.want) > 0.005 {
				t.Errorf("ContrastRatio(%s, %s) = %.4f, want %.2f", tt.a, tt.b, got, tt.want)
			}
			if rev := ContrastRatio(b, a); rev != got {
				t.Errorf("ContrastRatio is not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

var sampleColours = []RGB{
	Black, White,
	{R: 0x1a, G: 0x1a, B: 0x1a},
	{R: 0xff, G: 0x00, B: 0x00},
	{R: 0x12, G: 0x85, B: 0xc4},
	{R: 0xe0, G: 0xaf, B: 0x68},
	{R: 0x7d, G: 0x7d, B: 0x7d},
	{R: 0x01, G: 0xfe, B: 0x80},
}

func TestDarkenLightenIdentity(t *testing.T) {
	for _, c := range sampleColours {
		if got := Darken(c, 0); got != c {
			t.Errorf("Darken(%s, 0) = %s", c.Hex(), got.Hex())
		}
		if got := Lighten(c, 0); got != c {
			t.Errorf("Lighten(%s, 0) = %s", c.Hex(), got.Hex())
		}
	}
}

func TestDarkenLightenExtremes(t *testing.T) {
	for _, c := range sampleColours {
		if got := Darken(c, 1); got != Black {
			t.Errorf("Darken(%s, 1) = %s, want black", c.Hex(), got.Hex())
		}
		if got := Lighten(c, 1); got != White {
			t.Errorf("Lighten(%s, 1) = %s, want white", c.Hex(), got.Hex())
		}
	}
}

func TestDarkenLightenMonotonic(t *testing.T) {
	amounts := []float64{0, 0.01, 0.05, 0.25, 0.5, 0.8, 0.99, 1}
	for _, c := range sampleColours {
		base := RelativeLuminance(c)
		for _, a := range amounts {
			if l := RelativeLuminance(Darken(c, a)); l > base {
				t.Errorf("Darken(%s, %v) raised luminance %v -> %v", c.Hex(), a, base, l)
			}
			if l := RelativeLuminance(Lighten(c, a)); l < base {
				t.Errorf("Lighten(%s, %v) lowered luminance %v -> %v", c.Hex(), a, base, l)
			}
		}
	}
}

func TestDarkenKnownValue(t *testing.T) {
	got := Darken(MustParseHex("#1a1a1a"), 0.80)
	if got.Hex() != "#050505" {
		t.Errorf("Darken(#1a1a1a, 0.80) = %s, want #050505", got.Hex())
	}
	got = Lighten(MustParseHex("#000000"), 0.25)
	if got.Hex() != "#404040" {
		t.Errorf("Lighten(#000000, 0.25) = %s, want #404040", got.Hex())
	}
}

func TestAdjustSaturation(t *testing.T) {
	t.Run("zero delta is identity", func(t *testing.T) {
		for _, c := range sampleColours {
			if got := AdjustSaturation(c, 0); got != c {
				t.Errorf("AdjustSaturation(%s, 0) = %s", c.Hex(), got.Hex())
			}
		}
	})

	t.Run("full desaturation gives grey", func(t *testing.T) {
		got := AdjustSaturation(MustParseHex("#ff0000"), -1)
		if got.R != got.G || got.G != got.B {
			t.Errorf("AdjustSaturation(red, -1) = %s, want grey", got.Hex())
		}
	})

	t.Run("hue and lightness preserved", func(t *testing.T) {
		c := MustParseHex("#4080c0")
		h0, s0, l0 := c.HSL()
		for _, d := range []float64{-0.5, -0.2, 0.2, 0.5} {
			h, s, l := AdjustSaturation(c, d).HSL()
			if hueDelta(h, h0) > 2 {
				t.Errorf("delta %v moved hue %v -> %v", d, h0, h)
			}
			if math.Abs(l-l0) > 0.01 {
				t.Errorf("delta %v moved lightness %v -> %v", d, l0, l)
			}
			wantS := math.Min(1, s0*(1+d))
			if math.Abs(s-wantS) > 0.02 {
				t.Errorf("delta %v saturation = %v, want %v", d, s, wantS)
			}
		}
	})

	t.Run("saturation clamps at one", func(t *testing.T) {
		_, s, _ := AdjustSaturation(MustParseHex("#ff0000"), 1).HSL()
		if s > 1 {
			t.Errorf("saturation %v exceeds 1", s)
		}
	})
}

// hueDelta is the shortest angular distance between two hues.
func hueDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func TestBlend(t *testing.T) {
	c := MustParseHex("#336699")
	if got := Blend(c, Black, 0); got != c {
		t.Errorf("Blend(c, black, 0) = %s, want %s", got.Hex(), c.Hex())
	}
	if got := Blend(c, White, 1); got != White {
		t.Errorf("Blend(c, white, 1) = %s, want white", got.Hex())
	}
	mid := Blend(Black, White, 0.5)
	if mid.R < 127 || mid.R > 128 {
		t.Errorf("Blend(black, white, 0.5) = %s, want mid grey", mid.Hex())
	}
}

func TestTextRoundTrip(t *testing.T) {
	c := MustParseHex("#0a0b0c")
	text, err := c.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	var back RGB
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if back != c {
		t.Errorf("text round trip = %s, want %s", back.Hex(), c.Hex())
	}
	if err := back.UnmarshalText([]byte("nope")); !errors.Is(err, ErrMalformedColor) {
		t.Errorf("UnmarshalText(nope) error = %v, want ErrMalformedColor", err)
	}
}

func TestPreviewerPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreviewer(&buf, termenv.Ascii)
	if !p.Plain() {
		t.Fatal("expected plain previewer for Ascii profile")
	}
	if err := p.WriteRows([]RGB{Black, White, MustParseHex("#123456")}, 2); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	want := "#000000 #ffffff\n#123456\n"
	if buf.String() != want {
		t.Errorf("WriteRows() = %q, want %q", buf.String(), want)
	}
}

func TestPreviewerTrueColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPreviewer(&buf, termenv.TrueColor)
	if err := p.WriteLabelled("background", MustParseHex("#102030")); err != nil {
		t.Fatalf("WriteLabelled() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "48;2;16;32;48") {
		t.Errorf("expected truecolor background escape in %q", out)
	}
	if !strings.Contains(out, "#102030") {
		t.Errorf("expected hex code in %q", out)
	}
	if !strings.Contains(out, "38;2;255;255;255") {
		t.Errorf("expected white label text on a dark colour in %q", out)
	}
}
