// Package transform maps persisted entities to their public representations.
package transform

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks an entity that cannot be projected, such as a nil record.
var ErrInvalidInput = errors.New("invalid transform input")

// InvalidInputError reports which element of a sequence failed. Index is -1 for single calls.
type InvalidInputError struct {
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: element %d: %s", ErrInvalidInput, e.Index, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// Invalid builds the error a Transform implementation returns for unusable input.
func Invalid(reason string) error {
	return &InvalidInputError{Index: -1, Reason: reason}
}

// Transformer projects T into R. Implementations must not mutate their input
// and must return equal output for equal input.
type Transformer[T, R any] interface {
	Transform(entity T) (R, error)
	TransformMany(entities []T) ([]R, error)
}

// Func adapts a plain projection function to Transformer.
type Func[T, R any] func(T) (R, error)

func (f Func[T, R]) Transform(entity T) (R, error) { return f(entity) }

func (f Func[T, R]) TransformMany(entities []T) ([]R, error) { return Many(f, entities) }

// Many applies fn to every entity, keeping length and order. An empty or nil
// input yields an empty, non-nil slice. The first failure aborts and is
// reported with its index.
func Many[T, R any](fn func(T) (R, error), entities []T) ([]R, error) {
	out := make([]R, 0, len(entities))
	for i, e := range entities {
		r, err := fn(e)
		if err != nil {
			var ierr *InvalidInputError
			if errors.As(err, &ierr) {
				return nil, &InvalidInputError{Index: i, Reason: ierr.Reason}
			}
			return nil, fmt.Errorf("transform element %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
