package results

import "errors"

// Sentinel errors for the result owner.
// Callers should use errors.Is() to check for these.
var (
	// ErrClosed indicates an update was posted after the owner stopped.
	ErrClosed = errors.New("results: owner closed")
)
