package image

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// History remembers the last wallpaper a palette was generated from, so that
// iterative selection can continue where it left off.
type History struct {
	path string
}

// NewHistory stores state in file. An empty file disables the history.
func NewHistory(file string) *History {
	return &History{path: file}
}

// DefaultHistoryFile returns $XDG_CACHE_HOME/pigment/wallpaper.
func DefaultHistoryFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine cache directory: %w", err)
	}
	return filepath.Join(dir, "pigment", "wallpaper"), nil
}

// Last returns the recorded wallpaper, or "" when nothing was recorded yet.
func (h *History) Last() (string, error) {
	if h.path == "" {
		return "", nil
	}
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read wallpaper history: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Record stores wallpaper as the last one used.
func (h *History) Record(wallpaper string) error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(h.path, []byte(wallpaper+"\n"), 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return fmt.Errorf("failed to write wallpaper history: %w", err)
	}
	return nil
}
