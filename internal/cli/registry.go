package cli

import (
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pigment/internal/backend"
	"github.com/jmylchreest/pigment/internal/backend/external"
	"github.com/jmylchreest/pigment/internal/backend/genai"
	"github.com/jmylchreest/pigment/internal/backend/imagemagick"
	"github.com/jmylchreest/pigment/internal/backend/kmeans"
	"github.com/jmylchreest/pigment/internal/config"
)

// newRegistry registers the built-in backends and one external backend per
// configured plugin. A plugin named like a built-in replaces it.
func newRegistry(cfg config.Config, logger hclog.Logger) *backend.Registry {
	reg := backend.NewRegistry(
		kmeans.New(kmeans.Options{Count: cfg.SampleCount, Logger: logger}),
		imagemagick.New(imagemagick.Options{Binary: cfg.ImageMagick.Binary, Logger: logger}),
		genai.New(genai.Options{
			Model:   cfg.GenAI.Model,
			Count:   cfg.SampleCount,
			Service: cfg.GenAI.Service,
			Logger:  logger,
		}),
	)

	for _, name := range cfg.PluginNames() {
		p := cfg.Plugins[name]
		reg.Register(external.New(external.Options{
			Name:   name,
			Path:   p.Path,
			Args:   p.Args,
			Env:    p.Env,
			Logger: logger,
		}))
	}
	return reg
}
