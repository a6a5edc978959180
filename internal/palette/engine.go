package palette

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/colour"
)

// Request describes a single palette generation.
type Request struct {
	// Image is the path of the source image. Ignored by Build.
	Image string

	// Backend is the registry name of the extraction backend. Ignored by Build.
	Backend string

	Polarity Polarity
	Cols16   Cols16Mode

	// Contrast is the optional minimum contrast ratio in [1, 21].
	Contrast *float64

	// Saturation is the optional saturation delta in [-1, 1].
	Saturation *float64
}

// Validate checks the adjustment parameters.
func (r Request) Validate() error {
	if r.Polarity != Dark && r.Polarity != Light {
		return invalidRequest("unknown polarity %d", r.Polarity)
	}
	if _, err := ParseCols16Mode(string(r.Cols16)); err != nil {
		return invalidRequest("%v", err)
	}
	if r.Contrast != nil && (*r.Contrast < MinContrast || *r.Contrast > MaxContrast) {
		return invalidRequest("contrast %.2f out of range [%.0f, %.0f]", *r.Contrast, MinContrast, MaxContrast)
	}
	if r.Saturation != nil && (*r.Saturation < -1 || *r.Saturation > 1) {
		return invalidRequest("saturation %.2f out of range [-1, 1]", *r.Saturation)
	}
	return nil
}

// Engine runs the palette pipeline against a set of backends.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	backends *backend.Registry
	cfg      Config
	logger   hclog.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(backends *backend.Registry, cfg Config, logger hclog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if backends == nil {
		backends = backend.NewRegistry()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{backends: backends, cfg: cfg, logger: logger.Named("engine")}, nil
}

// Generate extracts colours from req.Image with req.Backend and builds the
// palette.
//
// A *ContrastIncompleteError is returned together with a usable palette;
// callers that only care about hard failures should check it with
// errors.Is(err, ErrContrastIncomplete).
func (e *Engine) Generate(ctx context.Context, req Request) (Palette, error) {
	if err := req.Validate(); err != nil {
		return Palette{}, err
	}

	b, err := e.backends.Get(req.Backend)
	if err != nil {
		return Palette{}, err
	}

	e.logger.Debug("extracting colours", "backend", b.Name(), "image", req.Image)
	raw, err := b.Extract(ctx, req.Image)
	if err != nil {
		return Palette{}, fmt.Errorf("%s backend: %w", b.Name(), err)
	}
	if err := backend.CheckSample(b.Name(), raw, e.cfg.MinColours); err != nil {
		return Palette{}, err
	}
	e.logger.Debug("extracted colours", "backend", b.Name(), "count", len(raw))

	return e.Build(raw, req)
}

// Build runs the pipeline on an already extracted sample. It performs no I/O.
func (e *Engine) Build(raw []colour.RGB, req Request) (Palette, error) {
	if err := req.Validate(); err != nil {
		return Palette{}, err
	}

	p, err := Normalize(raw, req.Polarity, req.Cols16, e.cfg)
	if err != nil {
		return Palette{}, err
	}
	e.logger.Trace("normalized palette", "polarity", req.Polarity, "cols16", req.Cols16,
		"background", p.Special.Background.Hex(), "colors", p.Hex())

	var incomplete error
	if req.Contrast != nil {
		p, err = EnforceContrast(p, *req.Contrast, e.cfg)
		var cie *ContrastIncompleteError
		switch {
		case errors.As(err, &cie):
			e.logger.Warn("contrast target not reached", "target", cie.Target, "slots", len(cie.Slots))
			incomplete = err
		case err != nil:
			return Palette{}, err
		}
	}

	if req.Saturation != nil {
		p = AdjustSaturation(p, *req.Saturation)
	}

	p.Wallpaper = req.Image
	return p, incomplete
}
