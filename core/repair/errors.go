package repair

import (
	"errors"
	"fmt"
)

var (
	// ErrUnquotedKey is returned when an object key is not a quoted string.
	ErrUnquotedKey = errors.New("unquoted object key")
	// ErrMalformed is returned when the text cannot be turned into JSON.
	ErrMalformed = errors.New("malformed JSON")
)

// ParseError carries the byte offset in the original text at which repair
// gave up.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("repair: offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
