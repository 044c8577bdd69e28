package rawhttp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := map[string]string{
		"a\nb":         "a\r\nb",
		"a\r\nb":       "a\r\nb",
		"a\r\nb\nc\n": "a\r\nb\r\nc\r\n",
		"":             "",
		"no newline":   "no newline",
		"\n\n":         "\r\n\r\n",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCRLF(in), "%q", in)
	}
}

func TestParseTemplate(t *testing.T) {
	raw := "POST /login HTTP/1.1\nHost: example.com:8080\nContent-Type: application/json\n\n{\"a\":1}"
	tpl, err := ParseTemplate(raw)
	require.NoError(t, err)

	assert.Equal(t, "POST /login HTTP/1.1\r\nHost: example.com:8080\r\nContent-Type: application/json", tpl.HeaderBlock)
	assert.Equal(t, `{"a":1}`, tpl.Body)
	assert.True(t, tpl.HasBody)
	assert.Equal(t, "example.com", tpl.Host)
	assert.Equal(t, 8080, tpl.Port)
	assert.True(t, tpl.HasPort)
	assert.Equal(t, []byte(tpl.Raw), tpl.Bytes())
}

func TestParseTemplate_NoBoundary(t *testing.T) {
	tpl, err := ParseTemplate("GET / HTTP/1.1\r\nhost: example.com")
	require.NoError(t, err)
	assert.False(t, tpl.HasBody)
	assert.Empty(t, tpl.Body)
	assert.Equal(t, "example.com", tpl.Host)
	assert.False(t, tpl.HasPort)
}

func TestParseTemplate_NoHost(t *testing.T) {
	tpl, err := ParseTemplate("GET / HTTP/1.1\r\nAccept: */*\r\n\r\n")
	require.NoError(t, err)
	assert.Empty(t, tpl.Host)
	assert.True(t, tpl.HasBody)
	assert.Empty(t, tpl.Body)
}

// Only the first boundary splits; later blank lines belong to the body.
func TestParseTemplate_BodyKeepsBlankLines(t *testing.T) {
	tpl, err := ParseTemplate("POST / HTTP/1.1\r\nHost: a\r\n\r\nline1\r\n\r\nline2")
	require.NoError(t, err)
	assert.Equal(t, "line1\r\n\r\nline2", tpl.Body)
}

func TestParseTemplate_BadPort(t *testing.T) {
	_, err := ParseTemplate("GET / HTTP/1.1\r\nHost: example.com:http\r\n\r\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Host", perr.Field)
	assert.Equal(t, "example.com:http", perr.Value)
}

func TestHeaderValue_NameMustBeExact(t *testing.T) {
	_, ok := HeaderValue("GET / HTTP/1.1\r\nHost : a.example\r\n", "Host")
	assert.False(t, ok)

	v, ok := HeaderValue("GET / HTTP/1.1\r\nHost:a.example  \r\n", "Host")
	require.True(t, ok)
	assert.Equal(t, "a.example", v)
}

func TestHeaderValue_FirstMatchWins(t *testing.T) {
	block := "GET / HTTP/1.1\r\nHOST: first\r\nHost: second"
	v, ok := HeaderValue(block, "host")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = HeaderValue(block, "Cookie")
	assert.False(t, ok)
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		in      string
		host    string
		port    int
		hasPort bool
	}{
		{"example.com", "example.com", 0, false},
		{"example.com:443", "example.com", 443, true},
		{" 10.0.0.1:8080 ", "10.0.0.1", 8080, true},
		{"[::1]:8443", "::1", 8443, true},
		{"[2001:db8::1]", "2001:db8::1", 0, false},
		{"2001:db8::1", "2001:db8::1", 0, false},
		{"", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, port, hasPort, err := SplitHostPort(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.hasPort, hasPort)
		})
	}
}

func TestSplitHostPort_Invalid(t *testing.T) {
	for _, in := range []string{"example.com:0", "example.com:70000", "example.com:", "[::1", "[::1]x"} {
		_, _, _, err := SplitHostPort(in)
		assert.ErrorIs(t, err, ErrParse, in)
	}
}
