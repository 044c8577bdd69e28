package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for transport failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrTransport indicates the request could not be delivered or the
	// response could not be read (dial, proxy, TLS, write or read failure).
	ErrTransport = errors.New("transport: send failed")

	// ErrProtocol indicates response bytes arrived but are not a readable
	// HTTP/1.x response.
	ErrProtocol = errors.New("transport: malformed response")

	// ErrProxy indicates a proxy URL that cannot be used.
	ErrProxy = errors.New("transport: invalid proxy")

	// ErrProfile indicates an unknown TLS fingerprint profile name.
	ErrProfile = errors.New("transport: unknown TLS profile")
)

// SendError describes a failed send phase against one address.
type SendError struct {
	Op   string // dial, proxy, tls, write, read
	Addr string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *SendError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// ProtocolError reports why a response could not be interpreted.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Line == "" {
		return "transport: " + e.Reason
	}
	return fmt.Sprintf("transport: %s: %q", e.Reason, e.Line)
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }
