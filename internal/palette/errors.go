package palette

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest is returned when a request parameter is out of range.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrContrastIncomplete is matched by *ContrastIncompleteError.
	ErrContrastIncomplete = errors.New("contrast target not reached")
)

// Shortfall records a slot that could not reach the contrast target.
type Shortfall struct {
	Slot     int
	Achieved float64
}

// ContrastIncompleteError is returned alongside a best-effort palette when one
// or more slots hit the step cap or a channel extreme before reaching the
// target ratio. The palette is still valid and usable.
type ContrastIncompleteError struct {
	Target float64
	Slots  []Shortfall
}

func (e *ContrastIncompleteError) Error() string {
	parts := make([]string, len(e.Slots))
	for i, s := range e.Slots {
		parts[i] = fmt.Sprintf("color%d=%.2f", s.Slot, s.Achieved)
	}
	return fmt.Sprintf("contrast target %.2f not reached for %d slot(s): %s",
		e.Target, len(e.Slots), strings.Join(parts, ", "))
}

// Is reports whether target is ErrContrastIncomplete.
func (e *ContrastIncompleteError) Is(target error) bool {
	return target == ErrContrastIncomplete
}

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
