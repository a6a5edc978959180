package image

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoImages is returned when a directory holds no supported images.
var ErrNoImages = errors.New("no supported image files found")

// SelectOptions controls how an image is picked from a directory.
type SelectOptions struct {
	// Recursive also scans subdirectories.
	Recursive bool

	// Iterative picks the image after Previous in sorted order instead of a
	// random one. It wraps around at the end.
	Iterative bool

	// Previous is the last wallpaper used. Random selection avoids it when
	// there is a choice.
	Previous string
}

// Scan returns the supported images in dir, sorted by path.
// Symlinks to files are followed; hidden entries are skipped.
func Scan(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil
		}
		if IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in directory: %s", ErrNoImages, dir)
	}

	slices.Sort(files)
	return files, nil
}

// Resolve returns path when it is a file. For a directory it scans for images
// and selects one according to opts. Directory results are absolute, and
// opts.Previous is compared in absolute form.
func Resolve(path string, opts SelectOptions) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}
	previous := opts.Previous
	if previous != "" {
		if previous, err = filepath.Abs(previous); err != nil {
			return "", fmt.Errorf("failed to resolve previous wallpaper: %w", err)
		}
	}

	files, err := Scan(dir, opts.Recursive)
	if err != nil {
		return "", err
	}
	if opts.Iterative {
		return Next(files, previous), nil
	}
	return Random(files, previous)
}

// Next returns the entry after previous in files, wrapping to the first.
// If previous is not in files the first entry is returned.
func Next(files []string, previous string) string {
	i := slices.Index(files, previous)
	return files[(i+1)%len(files)]
}

// Random selects an image other than exclude when more than one is available.
func Random(files []string, exclude string) (string, error) {
	if len(files) == 0 {
		return "", ErrNoImages
	}

	candidates := files
	if len(files) > 1 && slices.Contains(files, exclude) {
		candidates = slices.DeleteFunc(slices.Clone(files), func(f string) bool { return f == exclude })
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return candidates[n.Int64()], nil
}
