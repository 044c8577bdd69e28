package rawhttp

import (
	"strconv"
	"strings"
)

// BuildOptions selects which entity headers Build rewrites.
type BuildOptions struct {
	UpdateContentType   bool
	UpdateContentLength bool
}

// DefaultBuildOptions rewrites both Content-Type and Content-Length.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{UpdateContentType: true, UpdateContentLength: true}
}

// BuildHeader produces the header block bytes (including the terminating
// empty line) for a body of bodyLen bytes.
//
// Header lines keep their original order. A Content-Type or Content-Length
// line whose update flag is set gets its value replaced in place; when no
// such line exists one is appended after the last header.
//
// Header text is written byte-for-byte, so Content-Length only accounts for
// the body. Callers must not re-encode the header block into a multi-byte
// charset.
func BuildHeader(template string, bodyLen int, contentType string, opts BuildOptions) []byte {
	header, _, _ := splitBoundary(NormalizeCRLF(template))
	for strings.HasSuffix(header, crlf) {
		header = strings.TrimSuffix(header, crlf)
	}

	lines := strings.Split(header, crlf)
	out := make([]string, 0, len(lines)+2)
	contentLength := strconv.Itoa(bodyLen)
	foundCT, foundCL := false, false

	for _, line := range lines {
		if line == "" {
			continue
		}
		name, _, ok := splitHeader(line)
		switch {
		case ok && opts.UpdateContentType && strings.EqualFold(name, "Content-Type"):
			out = append(out, "Content-Type: "+contentType)
			foundCT = true
		case ok && opts.UpdateContentLength && strings.EqualFold(name, "Content-Length"):
			out = append(out, "Content-Length: "+contentLength)
			foundCL = true
		default:
			out = append(out, line)
		}
	}

	if opts.UpdateContentType && !foundCT {
		out = append(out, "Content-Type: "+contentType)
	}
	if opts.UpdateContentLength && !foundCL {
		out = append(out, "Content-Length: "+contentLength)
	}

	return []byte(strings.Join(out, crlf) + boundary)
}

// Build merges an encoded body and content type into the template's header
// block and returns the complete request bytes. With UpdateContentLength set,
// Content-Length is the byte length of body as given, i.e. after encoding.
func Build(template string, body []byte, contentType string, opts BuildOptions) []byte {
	header := BuildHeader(template, len(body), contentType, opts)
	req := make([]byte, 0, len(header)+len(body))
	req = append(req, header...)
	return append(req, body...)
}
