package charset

import (
	"errors"
	"fmt"
)

// Sentinel errors for charset failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrEncoding indicates text could not be converted to or from the
	// requested charset: an unknown charset name, a rune the charset cannot
	// represent, or input that is not valid UTF-8.
	ErrEncoding = errors.New("charset: encoding failed")

	// ErrUnknownCharset indicates the name matched neither the registry nor
	// the generic codec lookup.
	ErrUnknownCharset = errors.New("charset: unknown charset")
)

// EncodingError reports a failed conversion for a single charset.
type EncodingError struct {
	Op       string // "encode" or "decode"
	Encoding string
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("charset: %s %s: %v", e.Op, e.Encoding, e.Err)
}

// Unwrap exposes both ErrEncoding and the underlying cause to errors.Is.
func (e *EncodingError) Unwrap() []error {
	return []error{ErrEncoding, e.Err}
}

// unsupportedRuneError is returned by the table-driven code pages when a rune
// has no byte in the page.
type unsupportedRuneError struct {
	charset string
	r       rune
}

func (e *unsupportedRuneError) Error() string {
	return fmt.Sprintf("rune %U not representable in %s", e.r, e.charset)
}

var errInvalidUTF8 = errors.New("input is not valid UTF-8")
