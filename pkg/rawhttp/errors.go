package rawhttp

import (
	"errors"
	"fmt"
)

// ErrParse indicates a template could not be parsed.
// A missing header/body boundary is not a parse error.
// Callers should use errors.Is() to check for it.
var ErrParse = errors.New("rawhttp: parse failed")

// ParseError reports a malformed template field.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rawhttp: bad %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }
