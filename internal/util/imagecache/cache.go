// Package imagecache downloads remote wallpapers to a local cache so that every
// backend, including those that shell out, can work from a file path.
package imagecache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/pigment/internal/util/http"
)

// ErrNotImage is returned when the downloaded content is not an image.
var ErrNotImage = errors.New("remote content is not an image")

// Options configures image caching behavior.
type Options struct {
	// Dir is the directory where images are cached.
	// If empty, DefaultDir is used.
	Dir string

	// Refresh re-downloads an image that is already cached.
	Refresh bool

	// Fetch overrides the HTTP fetch options.
	Fetch httputil.FetchOptions
}

// DefaultDir returns the default cache directory ($XDG_CACHE_HOME/pigment/wallpapers).
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "pigment", "wallpapers"), nil
}

// IsURL reports whether s is an HTTP(S) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Filename returns the deterministic cache filename for a URL:
// a hash of the URL plus the extension of its path, defaulting to .jpg.
func Filename(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))

	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// Download fetches rawURL into the cache and returns the local path.
// A cached copy is reused unless opts.Refresh is set.
func Download(ctx context.Context, rawURL string, opts Options) (string, error) {
	if !IsURL(rawURL) {
		return "", fmt.Errorf("invalid URL %q: must start with http:// or https://", rawURL)
	}

	dir := opts.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cached := filepath.Join(dir, Filename(rawURL))
	if !opts.Refresh {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	data, err := httputil.Fetch(ctx, rawURL, opts.Fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotImage, rawURL, ct)
	}

	// Write then rename so a partial download is never mistaken for a cached image.
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store cached image: %w", err)
	}

	return cached, nil
}
