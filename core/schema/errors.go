package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingItems is returned when an array description has no items.
	ErrMissingItems = errors.New("array schema missing 'items'")
	// ErrMatcherBuild is returned when the key matcher of an object cannot be built.
	ErrMatcherBuild = errors.New("failed to build key matcher")
)

// SchemaError reports a compilation failure and where in the description
// it happened.
type SchemaError struct {
	// Path is a JSONPath-like location such as "$.properties.tags".
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema at %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
