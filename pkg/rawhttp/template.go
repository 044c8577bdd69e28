// Package rawhttp parses raw HTTP/1.x request templates and rebuilds them
// around a re-encoded body.
//
// Templates are handled as text: line endings are normalized to CRLF, the
// header block ends at the first empty line, and everything after it is the
// body. A template without an empty line has an empty body; that is not an
// error.
package rawhttp

import (
	"net"
	"strconv"
	"strings"
)

const (
	crlf     = "\r\n"
	boundary = "\r\n\r\n"
)

// Template is a parsed request template.
type Template struct {
	// Raw is the CRLF-normalized template text.
	Raw string
	// HeaderBlock is the request line plus headers, without the boundary.
	HeaderBlock string
	// Body is everything after the first empty line.
	Body string
	// HasBody reports whether a header/body boundary was found.
	HasBody bool

	// Host and Port come from the first Host header.
	Host    string
	Port    int
	HasPort bool
}

// NormalizeCRLF rewrites every line ending (CRLF or bare LF) as CRLF.
func NormalizeCRLF(raw string) string {
	return strings.ReplaceAll(strings.ReplaceAll(raw, crlf, "\n"), "\n", crlf)
}

// splitBoundary returns the header block and body of normalized text.
func splitBoundary(normalized string) (header, body string, ok bool) {
	return strings.Cut(normalized, boundary)
}

// ParseTemplate normalizes raw and splits it into header block and body,
// extracting the target from the Host header when present.
// The only failure is a Host header with a non-numeric port.
func ParseTemplate(raw string) (*Template, error) {
	normalized := NormalizeCRLF(raw)
	header, body, ok := splitBoundary(normalized)

	t := &Template{
		Raw:         normalized,
		HeaderBlock: header,
		Body:        body,
		HasBody:     ok,
	}

	if value, found := HeaderValue(header, "Host"); found {
		host, port, hasPort, err := SplitHostPort(value)
		if err != nil {
			return nil, err
		}
		t.Host, t.Port, t.HasPort = host, port, hasPort
	}
	return t, nil
}

// Bytes returns the normalized template as request bytes.
func (t *Template) Bytes() []byte {
	return []byte(t.Raw)
}

// HeaderValue returns the trimmed value of the first header named name
// (case-insensitive) in a header block.
func HeaderValue(headerBlock, name string) (string, bool) {
	for _, line := range strings.Split(headerBlock, crlf) {
		if k, v, ok := splitHeader(line); ok && strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// splitHeader splits "Name: value". The name is taken as written, so a line
// with whitespace around the name ("Content-Type : x") names no header and
// is left alone.
func splitHeader(line string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(line, ":")
	if !ok || name == "" || strings.TrimSpace(name) != name {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}

// SplitHostPort splits a Host header value into host and optional port.
// Bracketed IPv6 literals ("[::1]:8443") are supported; a bare IPv6 literal
// without brackets is returned as the host with no port.
func SplitHostPort(value string) (host string, port int, hasPort bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", 0, false, nil
	}

	if strings.HasPrefix(value, "[") {
		end := strings.IndexByte(value, ']')
		if end < 0 {
			return "", 0, false, &ParseError{Field: "Host", Value: value, Reason: "unterminated IPv6 literal"}
		}
		host = value[1:end]
		rest := value[end+1:]
		if rest == "" {
			return host, 0, false, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return "", 0, false, &ParseError{Field: "Host", Value: value, Reason: "unexpected text after IPv6 literal"}
		}
		port, err = parsePort(value, rest[1:])
		return host, port, err == nil, err
	}

	if strings.Count(value, ":") != 1 {
		return value, 0, false, nil
	}

	h, p, splitErr := net.SplitHostPort(value)
	if splitErr != nil {
		return "", 0, false, &ParseError{Field: "Host", Value: value, Reason: splitErr.Error()}
	}
	port, err = parsePort(value, p)
	if err != nil {
		return "", 0, false, err
	}
	return h, port, true, nil
}

func parsePort(value, p string) (int, error) {
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 || n > 65535 {
		return 0, &ParseError{Field: "Host", Value: value, Reason: "invalid port " + strconv.Quote(p)}
	}
	return n, nil
}
