// Package defaults provides canonical default values for the entire codebase.
//
// Usage:
//
//	cfg.MaxResponseSize = defaults.MaxResponseSize
//	port := defaults.PortFor(useTLS)
//
// Reference these constants instead of hardcoding values.
package defaults

// ToolName is the binary name used in banners, user agents and metrics.
const ToolName = "waf-charset"

// Version is the current waf-charset version
const Version = "1.0.0"

// ============================================================================
// TARGET PORTS
// ============================================================================

const (
	// PortHTTP is the default port for plain targets (80)
	PortHTTP = 80

	// PortHTTPS is the default port for TLS targets (443)
	PortHTTPS = 443
)

// PortFor returns the default port for the scheme.
func PortFor(useTLS bool) int {
	if useTLS {
		return PortHTTPS
	}
	return PortHTTP
}

// ============================================================================
// BUFFER SIZES
// ============================================================================

const (
	// BufferSmall is the read buffer for status lines and proxy replies (4KB)
	BufferSmall = 4 * 1024

	// MaxResponseSize caps how much of a response the raw transport keeps (10MB)
	MaxResponseSize = 10 * 1024 * 1024
)

// ============================================================================
// CHANNEL SIZES
// ============================================================================

const (
	// ChannelSmall buffers result updates between senders and the store owner (100)
	ChannelSmall = 100
)

// ============================================================================
// RATE LIMITING
// ============================================================================

const (
	// RateLimitNone disables the token bucket; only the fixed delay applies (0)
	RateLimitNone = 0
)

// ============================================================================
// TLS FINGERPRINT
// ============================================================================

const (
	// JA3None sends a standard crypto/tls ClientHello
	JA3None = ""
)

// ============================================================================
// OBSERVABILITY
// ============================================================================

const (
	// MetricsNamespace prefixes every exported Prometheus metric
	MetricsNamespace = "wafcharset"

	// TracerName identifies spans emitted by the OpenTelemetry hook
	TracerName = "github.com/waftester/wafcharset"
)
