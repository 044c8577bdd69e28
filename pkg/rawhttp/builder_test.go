package rawhttp

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/wafcharset/pkg/charset"
)

const loginTemplate = "POST /api/login HTTP/1.1\r\n" +
	"Host: target.local\r\n" +
	"X-Trace: keep-me\r\n" +
	"Content-Type: application/x-www-form-urlencoded\r\n" +
	"Content-Length: 33\r\n" +
	"\r\n" +
	`{"username":"admin","pwd":"test"}`

func TestBuild_UTF16LEJSON(t *testing.T) {
	body, err := charset.Encode(`{"username":"admin","pwd":"test"}`, "UTF-16LE")
	require.NoError(t, err)
	require.Len(t, body, 66)

	ct := charset.ResolveContentType("application/json; charset={encoding}", charset.CharsetToken("UTF-16LE"))
	req := Build(loginTemplate, body, ct, DefaultBuildOptions())

	want := "POST /api/login HTTP/1.1\r\n" +
		"Host: target.local\r\n" +
		"X-Trace: keep-me\r\n" +
		"Content-Type: application/json; charset=utf-16le\r\n" +
		"Content-Length: 66\r\n" +
		"\r\n"
	require.True(t, bytes.HasPrefix(req, []byte(want)))
	assert.Equal(t, body, req[len(want):])

	// No byte-order mark for the explicit little-endian form.
	assert.Equal(t, byte('{'), req[len(want)])

	// The unmarked form carries one and grows by two bytes.
	marked, err := charset.Encode(`{"username":"admin","pwd":"test"}`, "UTF-16")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE}, marked[:2])
	assert.Contains(t, string(Build(loginTemplate, marked, ct, DefaultBuildOptions())), "Content-Length: 68\r\n")
}

func TestBuild_ContentLengthMatchesEveryCatalogEntry(t *testing.T) {
	for _, spec := range charset.Catalog() {
		body, err := charset.Encode(`{"username":"admin","pwd":"test"}`, spec.Name)
		require.NoError(t, err, spec.Name)

		header := BuildHeader(loginTemplate, len(body), "text/plain", DefaultBuildOptions())
		req := Build(loginTemplate, body, "text/plain", DefaultBuildOptions())

		assert.Len(t, req, len(header)+len(body), spec.Name)
		v, ok := HeaderValue(string(header), "Content-Length")
		require.True(t, ok, spec.Name)
		assert.Equal(t, strconv.Itoa(len(body)), v, spec.Name)
	}
}

func TestBuild_FlagsOffPreserveHeaders(t *testing.T) {
	req := Build(loginTemplate, []byte("xyz"), "application/json", BuildOptions{})
	header, body, ok := strings.Cut(string(req), "\r\n\r\n")
	require.True(t, ok)

	wantHeader, _, _ := strings.Cut(loginTemplate, "\r\n\r\n")
	assert.Equal(t, wantHeader, header)
	assert.Equal(t, "xyz", body)
}

func TestBuild_OnlyContentType(t *testing.T) {
	req := string(Build(loginTemplate, []byte("xyz"), "text/xml; charset=ibm037",
		BuildOptions{UpdateContentType: true}))
	assert.Contains(t, req, "Content-Type: text/xml; charset=ibm037\r\n")
	assert.Contains(t, req, "Content-Length: 33\r\n")
}

func TestBuild_AppendsMissingHeaders(t *testing.T) {
	tpl := "POST / HTTP/1.1\nHost: a\n\nbody"
	req := string(Build(tpl, []byte("abcd"), "text/plain", DefaultBuildOptions()))
	assert.Equal(t, "POST / HTTP/1.1\r\nHost: a\r\nContent-Type: text/plain\r\nContent-Length: 4\r\n\r\nabcd", req)
}

func TestBuild_CaseInsensitiveReplaceAll(t *testing.T) {
	tpl := "POST / HTTP/1.1\r\ncontent-type: a\r\nCONTENT-LENGTH: 1\r\ncontent-length: 2\r\n\r\n"
	req := string(Build(tpl, []byte("hello"), "b", DefaultBuildOptions()))
	assert.Equal(t, "POST / HTTP/1.1\r\nContent-Type: b\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\nhello", req)
}

func TestBuild_SpacedHeaderNameIsNotMatched(t *testing.T) {
	tpl := "POST / HTTP/1.1\r\nContent-Type : a\r\n Content-Length: 1\r\n\r\n"
	req := string(Build(tpl, []byte("hi"), "b", DefaultBuildOptions()))
	assert.Equal(t, "POST / HTTP/1.1\r\nContent-Type : a\r\n Content-Length: 1\r\nContent-Type: b\r\nContent-Length: 2\r\n\r\nhi", req)
}

func TestBuild_TemplateWithoutBoundary(t *testing.T) {
	req := string(Build("GET / HTTP/1.1\r\nHost: a", nil, "x", BuildOptions{UpdateContentLength: true}))
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: a\r\nContent-Length: 0\r\n\r\n", req)

	// Trailing blank lines in the header block are dropped.
	req = string(Build("GET / HTTP/1.1\r\nHost: a\r\n\r\n\r\n", nil, "x", BuildOptions{}))
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: a\r\n\r\n", req)
}
