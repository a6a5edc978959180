package cli

import (
	"github.com/spf13/pflag"

	"github.com/jmylchreest/pigment/internal/colour"
	"github.com/jmylchreest/pigment/internal/palette"
)

// cols16Flag is a pflag.Value accepting off, darken or lighten.
type cols16Flag palette.Cols16Mode

var _ pflag.Value = (*cols16Flag)(nil)

func (f *cols16Flag) String() string {
	if *f == "" {
		return string(palette.Cols16Off)
	}
	return string(*f)
}

func (f *cols16Flag) Set(s string) error {
	mode, err := palette.ParseCols16Mode(s)
	if err != nil {
		return err
	}
	*f = cols16Flag(mode)
	return nil
}

func (f *cols16Flag) Type() string { return "mode" }

// colourFlag is a pflag.Value holding an optional hex colour.
type colourFlag struct {
	value colour.RGB
	set   bool
}

var _ pflag.Value = (*colourFlag)(nil)

func (f *colourFlag) String() string {
	if !f.set {
		return ""
	}
	return f.value.Hex()
}

func (f *colourFlag) Set(s string) error {
	c, err := colour.ParseHex(s)
	if err != nil {
		return err
	}
	f.value, f.set = c, true
	return nil
}

func (f *colourFlag) Type() string { return "hex" }

// optionalFloat returns a pointer to the value of a float flag, or nil when
// the flag was not given.
func optionalFloat(flags *pflag.FlagSet, name string) (*float64, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	v, err := flags.GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
