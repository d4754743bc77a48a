package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrRecursionLimit is returned when nesting exceeds MaxDepth.
	ErrRecursionLimit = errors.New("recursion limit reached")
	// ErrUnexpectedEOF is returned when a quoted string never closes.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrInvalidText is returned in strict mode when a string value is not valid UTF-8.
	ErrInvalidText = errors.New("string value is not valid UTF-8")
	// ErrMissingField is matched by every *MissingFieldError.
	ErrMissingField = errors.New("missing required field")
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("no value matching the schema found")
	// ErrUnsupportedRoot is returned by New when the schema root is not an object or array.
	ErrUnsupportedRoot = errors.New("schema root must be an object or an array")
)

// MissingFieldError reports a required field that was not found.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Name)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// NotFoundError is returned once every candidate start offset has failed.
type NotFoundError struct {
	// Attempts is the number of candidate offsets tried.
	Attempts int
	// LastErr is the failure of the last attempt, nil when there was no
	// candidate at all.
	LastErr error
}

func (e *NotFoundError) Error() string {
	if e.LastErr == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s after %d attempts, last: %v", ErrNotFound, e.Attempts, e.LastErr)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.LastErr }
