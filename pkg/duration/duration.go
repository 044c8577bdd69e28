// Package duration provides canonical time constants for the entire codebase.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.SendTimeout)
//	time.Sleep(duration.SendDelay)
//
// Reference these constants instead of hardcoding time.Duration values.
package duration

import "time"

// ============================================================================
// SEND PACING
// ============================================================================
//
// Sequential sends are paced with a fixed delay so a target is never hit by
// back-to-back requests.
// ============================================================================

const (
	// SendDelay is the pause between consecutive sends in a sweep (100ms)
	SendDelay = 100 * time.Millisecond
)

// ============================================================================
// NETWORK/TRANSPORT
// ============================================================================
//
// Use these for the raw transport's dial, handshake and read phases.
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// TLSHandshake is for TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second

	// ReadTimeout bounds how long a response is read after the request is written (15s)
	ReadTimeout = 15 * time.Second

	// SendTimeout bounds one full send: dial, handshake, write and read (30s)
	SendTimeout = 30 * time.Second
)

// ============================================================================
// RESPONSE TIME THRESHOLDS
// ============================================================================

const (
	// SlowResponse flags a response as slow in console output (5s)
	SlowResponse = 5 * time.Second
)

// ============================================================================
// SHUTDOWN
// ============================================================================

const (
	// ShutdownGrace is how long exporters and servers get to flush on exit (5s)
	ShutdownGrace = 5 * time.Second
)
