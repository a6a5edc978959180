package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDir         = "pigment"
	configFileName = "config.yaml"
)

// Mocked in tests.
var osUserConfigDir = os.UserConfigDir

var getUserConfigPath = func() (string, error) {
	dir, err := osUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, configFileName), nil
}

// UserConfigPath returns the user configuration file path.
func UserConfigPath() (string, error) {
	return getUserConfigPath()
}

// Load layers the defaults, the user configuration file and, when explicit is
// not empty, the file at explicit. A missing user file is ignored; a missing
// explicit file is an error.
func Load(explicit string) (Config, error) {
	cfg := Default()

	userPath, err := getUserConfigPath()
	if err == nil {
		overlay, err := loadFile(userPath)
		switch {
		case err == nil:
			cfg = merge(cfg, overlay)
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("error loading user config from %s: %w", userPath, err)
		}
	}

	if explicit != "" {
		overlay, err := loadFile(explicit)
		if err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", explicit, err)
		}
		cfg = merge(cfg, overlay)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - config path chosen by the user
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// merge overlays the non-zero fields of overlay onto base. Plugins are merged
// by name.
func merge(base, overlay Config) Config {
	out := base

	if overlay.Backend != "" {
		out.Backend = overlay.Backend
	}
	if overlay.MinColors != 0 {
		out.MinColors = overlay.MinColors
	}
	if overlay.SampleCount != 0 {
		out.SampleCount = overlay.SampleCount
	}
	if overlay.BackgroundShift != 0 {
		out.BackgroundShift = overlay.BackgroundShift
	}
	if overlay.BrightStep != 0 {
		out.BrightStep = overlay.BrightStep
	}
	if overlay.Cols16Ratio != 0 {
		out.Cols16Ratio = overlay.Cols16Ratio
	}
	if overlay.ContrastStep != 0 {
		out.ContrastStep = overlay.ContrastStep
	}
	if overlay.ContrastMaxSteps != 0 {
		out.ContrastMaxSteps = overlay.ContrastMaxSteps
	}
	if overlay.LogLevel != "" {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.CacheDir != "" {
		out.CacheDir = overlay.CacheDir
	}
	if overlay.GenAI.Model != "" {
		out.GenAI.Model = overlay.GenAI.Model
	}
	if overlay.GenAI.Service != "" {
		out.GenAI.Service = overlay.GenAI.Service
	}
	if overlay.ImageMagick.Binary != "" {
		out.ImageMagick.Binary = overlay.ImageMagick.Binary
	}

	plugins := make(map[string]PluginConfig, len(base.Plugins)+len(overlay.Plugins))
	for name, p := range base.Plugins {
		plugins[name] = p
	}
	for name, p := range overlay.Plugins {
		plugins[name] = p
	}
	out.Plugins = plugins

	return out
}
