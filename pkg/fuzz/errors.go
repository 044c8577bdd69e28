package fuzz

import "errors"

// Sentinel errors for fuzz generation.
// Callers should use errors.Is() to check for these.
var (
	// ErrEmptyBody indicates the template has no body to re-encode.
	ErrEmptyBody = errors.New("fuzz: request body is empty")
)
