// Package backend defines the contract every colour extraction backend
// satisfies and a registry for selecting one by name.
//
// A backend maps an image to a raw, ordered list of colours. The palette
// engine never looks inside a backend; it only consumes the returned sample.
package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmylchreest/pigment/internal/colour"
)

// DefaultMinColours is the minimum number of distinct colours a backend
// must find for a sample to be usable.
const DefaultMinColours = 6

// Backend extracts a raw colour sample from an image.
type Backend interface {
	// Name returns the configuration key of the backend (e.g. "kmeans").
	Name() string

	// Description returns a human-readable description of the backend.
	Description() string

	// Extract returns the colours found in the image at imagePath.
	// It either returns a complete sample or an error; there are no partial results.
	Extract(ctx context.Context, imagePath string) ([]colour.RGB, error)
}

var (
	// ErrBackendUnavailable is matched by *UnavailableError.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrInsufficientColours is matched by *InsufficientColoursError.
	ErrInsufficientColours = errors.New("insufficient colours")

	// ErrUnknownBackend is returned by Registry.Get for unregistered names.
	ErrUnknownBackend = errors.New("unknown backend")
)

// UnavailableError reports a backend whose native dependency or credential
// is missing.
type UnavailableError struct {
	Backend string
	Reason  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %s", e.Backend, e.Reason)
}

// Is reports whether target is ErrBackendUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// InsufficientColoursError reports a sample with too few distinct colours.
type InsufficientColoursError struct {
	Backend string
	Found   int
	Minimum int
}

func (e *InsufficientColoursError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("found %d distinct colours, need at least %d", e.Found, e.Minimum)
	}
	return fmt.Sprintf("backend %s found %d distinct colours, need at least %d (try another backend or image)",
		e.Backend, e.Found, e.Minimum)
}

// Is reports whether target is ErrInsufficientColours.
func (e *InsufficientColoursError) Is(target error) bool {
	return target == ErrInsufficientColours
}

// DistinctCount returns the number of distinct colours in sample.
func DistinctCount(sample []colour.RGB) int {
	seen := make(map[colour.RGB]struct{}, len(sample))
	for _, c := range sample {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// CheckSample returns an *InsufficientColoursError when sample holds fewer
// than minimum distinct colours.
func CheckSample(name string, sample []colour.RGB, minimum int) error {
	if n := DistinctCount(sample); n < minimum {
		return &InsufficientColoursError{Backend: name, Found: n, Minimum: minimum}
	}
	return nil
}

// Registry holds the known backends keyed by name.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates a registry holding the given backends.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds a backend, replacing any existing backend with the same name.
func (r *Registry) Register(b Backend) {
	r.backends[b.Name()] = b
}

// Get retrieves a backend by name.
func (r *Registry) Get(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownBackend, name, r.List())
	}
	return b, nil
}

// Has reports whether a backend is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.backends[name]
	return ok
}

// List returns all registered backend names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered backends ordered by name.
func (r *Registry) All() []Backend {
	out := make([]Backend, 0, len(r.backends))
	for _, name := range r.List() {
		out = append(out, r.backends[name])
	}
	return out
}
