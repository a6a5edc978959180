// Package config loads pigment's YAML configuration.
package config

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pigment/internal/backend/genai"
	"github.com/jmylchreest/pigment/internal/backend/kmeans"
	"github.com/jmylchreest/pigment/internal/palette"
)

// Config is the merged configuration.
type Config struct {
	// Backend is the extraction backend used when --backend is not given.
	Backend string `yaml:"backend"`

	// MinColors is the minimum number of distinct colours a backend must find.
	MinColors int `yaml:"min_colors"`

	// SampleCount is the number of colours requested from backends that take a count.
	SampleCount int `yaml:"sample_count"`

	BackgroundShift  float64 `yaml:"background_shift"`
	BrightStep       float64 `yaml:"bright_step"`
	Cols16Ratio      float64 `yaml:"cols16_ratio"`
	ContrastStep     float64 `yaml:"contrast_step"`
	ContrastMaxSteps int     `yaml:"contrast_max_steps"`

	LogLevel string `yaml:"log_level"`

	// CacheDir holds downloaded remote images. Empty means the user cache dir.
	CacheDir string `yaml:"cache_dir"`

	Plugins     map[string]PluginConfig `yaml:"plugins"`
	GenAI       GenAIConfig             `yaml:"genai"`
	ImageMagick ImageMagickConfig       `yaml:"imagemagick"`
}

// PluginConfig registers an external backend executable.
type PluginConfig struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args,omitempty"`
	Env  []string `yaml:"env,omitempty"`
}

// GenAIConfig configures the genai backend.
type GenAIConfig struct {
	Model string `yaml:"model"`

	// Service is gemini-api (default) or vertex-ai.
	Service string `yaml:"service"`
}

// ImageMagickConfig configures the imagemagick backend.
type ImageMagickConfig struct {
	Binary string `yaml:"binary"`
}

// Default returns the built-in configuration.
func Default() Config {
	engine := palette.DefaultConfig()
	return Config{
		Backend:          kmeans.Name,
		MinColors:        engine.MinColours,
		SampleCount:      kmeans.DefaultCount,
		BackgroundShift:  engine.BackgroundShift,
		BrightStep:       engine.BrightStep,
		Cols16Ratio:      engine.Cols16Ratio,
		ContrastStep:     engine.ContrastStep,
		ContrastMaxSteps: engine.ContrastMaxSteps,
		LogLevel:         "warn",
		Plugins:          map[string]PluginConfig{},
	}
}

// Engine returns the palette engine constants.
func (c Config) Engine() palette.Config {
	return palette.Config{
		BackgroundShift:  c.BackgroundShift,
		BrightStep:       c.BrightStep,
		Cols16Ratio:      c.Cols16Ratio,
		ContrastStep:     c.ContrastStep,
		ContrastMaxSteps: c.ContrastMaxSteps,
		MinColours:       c.MinColors,
	}
}

// Level returns the configured log level.
func (c Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// PluginNames returns the configured plugin names in sorted order.
func (c Config) PluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for name := range c.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	if c.Backend == "" {
		return fmt.Errorf("backend must not be empty")
	}
	if c.SampleCount < c.MinColors {
		return fmt.Errorf("sample_count (%d) must be at least min_colors (%d)", c.SampleCount, c.MinColors)
	}
	if c.Level() == hclog.NoLevel {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.GenAI.Service {
	case "", genai.BackendGeminiAPI, genai.BackendVertexAI:
	default:
		return fmt.Errorf("unknown genai service %q (valid: %s, %s)", c.GenAI.Service, genai.BackendGeminiAPI, genai.BackendVertexAI)
	}
	for _, name := range c.PluginNames() {
		if c.Plugins[name].Path == "" {
			return fmt.Errorf("plugin %s has no path", name)
		}
	}
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
