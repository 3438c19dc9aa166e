package paginate

import (
	"errors"
	"fmt"
)

// ErrInvalidRange marks out-of-range pagination input (maps to HTTP 400).
var ErrInvalidRange = errors.New("invalid range")

// RangeError names the offending parameter and unwraps to ErrInvalidRange.
type RangeError struct {
	Field  string
	Value  int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s=%d %s", ErrInvalidRange, e.Field, e.Value, e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }
