package transport

import (
	"bytes"
	"strconv"
	"strings"
)

// maxStatusLine bounds how much of a response is inspected for the status line.
const maxStatusLine = 1024

// StatusCode extracts the status code from raw HTTP/1.x response bytes.
// Only the status line is inspected; headers and body may be truncated.
func StatusCode(resp []byte) (int, error) {
	if len(resp) == 0 {
		return 0, &ProtocolError{Reason: "empty response"}
	}

	line := resp
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > maxStatusLine {
		line = line[:maxStatusLine]
	}
	text := strings.TrimRight(string(line), "\r")

	proto, rest, ok := strings.Cut(text, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return 0, &ProtocolError{Line: text, Reason: "not an HTTP status line"}
	}
	code, _, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	if len(code) != 3 {
		return 0, &ProtocolError{Line: text, Reason: "status code is not three digits"}
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 {
		return 0, &ProtocolError{Line: text, Reason: "invalid status code"}
	}
	return n, nil
}

// SplitResponse splits raw response bytes at the first empty line.
// A response without one is all head.
func SplitResponse(resp []byte) (head, body []byte) {
	if i := bytes.Index(resp, []byte("\r\n\r\n")); i >= 0 {
		return resp[:i], resp[i+4:]
	}
	if i := bytes.Index(resp, []byte("\n\n")); i >= 0 {
		return resp[:i], resp[i+2:]
	}
	return resp, nil
}
