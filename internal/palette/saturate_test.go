package palette

import (
	"testing"

	"github.com/jmylchreest/pigment/internal/colour"
)

func TestAdjustSaturationIdentity(t *testing.T) {
	for _, n := range []int{1, 6, 16, 40} {
		p, _ := Normalize(generated(n), Dark, Cols16Off, DefaultConfig())
		if got := AdjustSaturation(p, 0); got != p {
			t.Errorf("n=%d: AdjustSaturation(p, 0) changed the palette", n)
		}
	}
}

func TestAdjustSaturation(t *testing.T) {
	bg := colour.MustParseHex("#101820")
	p := flat(bg, colour.MustParseHex("#996633"))
	p.Colors[7] = colour.MustParseHex("#808080")

	tests := []struct {
		name  string
		delta float64
		check func(before, after float64) bool
	}{
		{name: "increase", delta: 0.5, check: func(b, a float64) bool { return a > b }},
		{name: "decrease", delta: -0.5, check: func(b, a float64) bool { return a < b }},
		{name: "desaturate fully", delta: -1, check: func(_, a float64) bool { return a < 0.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustSaturation(p, tt.delta)

			if got.Special != p.Special {
				t.Errorf("special colours changed: %+v", got.Special)
			}
			if got.Colors[7] != p.Colors[7] {
				t.Errorf("grey color7 changed to %s", got.Colors[7].Hex())
			}

			_, sb, _ := p.Colors[1].HSL()
			_, sa, _ := got.Colors[1].HSL()
			if !tt.check(sb, sa) {
				t.Errorf("color1 saturation %.3f -> %.3f with delta %v", sb, sa, tt.delta)
			}
			for i := 1; i < Slots; i++ {
				if i == 7 {
					continue
				}
				if got.Colors[i] != got.Colors[1] {
					t.Errorf("color%d = %s, want %s", i, got.Colors[i].Hex(), got.Colors[1].Hex())
				}
			}
		})
	}
}
