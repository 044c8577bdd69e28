package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := map[string]int{
		"HTTP/1.1 200 OK\r\n\r\n":                 200,
		"HTTP/1.0 403 Forbidden\r\nServer: x\r\n": 403,
		"HTTP/1.1 406\r\n\r\n":                    406,
		"HTTP/1.1 501 Not Implemented":            501,
		"HTTP/2 200\n":                            200,
	}
	for in, want := range tests {
		got, err := StatusCode([]byte(in))
		require.NoError(t, err, "%q", in)
		assert.Equal(t, want, got, "%q", in)
	}
}

func TestStatusCode_Malformed(t *testing.T) {
	for _, in := range []string{"", "garbage", "HTTP/1.1 abc OK", "HTTP/1.1 20 OK", "SSH-2.0-OpenSSH\r\n", "HTTP/1.1 099 x"} {
		_, err := StatusCode([]byte(in))
		require.Error(t, err, "%q", in)
		assert.True(t, errors.Is(err, ErrProtocol), "%q", in)
		assert.False(t, errors.Is(err, ErrTransport), "%q", in)
	}

	var perr *ProtocolError
	_, err := StatusCode([]byte("garbage\r\n"))
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "garbage", perr.Line)
}

func TestSplitResponse(t *testing.T) {
	head, body := SplitResponse([]byte("HTTP/1.1 200 OK\r\nA: b\r\n\r\nbody\r\n\r\nmore"))
	assert.Equal(t, "HTTP/1.1 200 OK\r\nA: b", string(head))
	assert.Equal(t, "body\r\n\r\nmore", string(body))

	head, body = SplitResponse([]byte("HTTP/1.1 200 OK\n\nx"))
	assert.Equal(t, "HTTP/1.1 200 OK", string(head))
	assert.Equal(t, "x", string(body))

	head, body = SplitResponse([]byte("HTTP/1.1 200 OK\r\n"))
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", string(head))
	assert.Nil(t, body)
}
