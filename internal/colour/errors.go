package colour

import (
	"errors"
	"fmt"
)

// ErrMalformedColor is matched by every *MalformedColorError.
var ErrMalformedColor = errors.New("malformed colour")

// MalformedColorError reports a hex string that is not exactly six hex digits.
type MalformedColorError struct {
	Input  string
	Reason string
}

func (e *MalformedColorError) Error() string {
	return fmt.Sprintf("malformed colour %q: %s", e.Input, e.Reason)
}

// Is reports whether target is ErrMalformedColor.
func (e *MalformedColorError) Is(target error) bool {
	return target == ErrMalformedColor
}
