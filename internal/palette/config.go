package palette

import "fmt"

// Contrast ratio bounds on the WCAG scale.
const (
	MinContrast = 1.0
	MaxContrast = 21.0
)

// Config holds the tuning constants of the palette engine.
// The zero value is not useful; start from DefaultConfig.
type Config struct {
	// BackgroundShift is how far the background candidate is pushed toward
	// black (dark) or white (light).
	BackgroundShift float64

	// BrightStep separates color8 ("bright black") from color0.
	BrightStep float64

	// Cols16Ratio is the blend applied to colours 0 and 8 in 16-colour mode.
	Cols16Ratio float64

	// ContrastStep is the fraction of remaining channel headroom moved per
	// contrast correction step.
	ContrastStep float64

	// ContrastMaxSteps bounds the contrast correction loop per slot.
	ContrastMaxSteps int

	// MinColours is the minimum number of distinct colours a backend must return.
	MinColours int
}

// DefaultConfig returns the engine defaults.
//
// ContrastStep and ContrastMaxSteps were chosen so that any channel can walk
// all the way to 0 or 255 inside the cap: 5% of headroom per step, with a
// minimum of one unit, takes at most ~75 steps.
func DefaultConfig() Config {
	return Config{
		BackgroundShift:  0.80,
		BrightStep:       0.25,
		Cols16Ratio:      0.20,
		ContrastStep:     0.05,
		ContrastMaxSteps: 100,
		MinColours:       6,
	}
}

// Validate checks that every constant is in range.
func (c Config) Validate() error {
	ratios := []struct {
		name  string
		value float64
	}{
		{"background shift", c.BackgroundShift},
		{"bright step", c.BrightStep},
		{"cols16 ratio", c.Cols16Ratio},
	}
	for _, r := range ratios {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", r.name, r.value)
		}
	}
	if c.ContrastStep <= 0 || c.ContrastStep > 1 {
		return fmt.Errorf("contrast step must be in (0, 1], got %v", c.ContrastStep)
	}
	if c.ContrastMaxSteps < 1 {
		return fmt.Errorf("contrast max steps must be at least 1, got %d", c.ContrastMaxSteps)
	}
	if c.MinColours < 1 {
		return fmt.Errorf("min colours must be at least 1, got %d", c.MinColours)
	}
	return nil
}
