package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxyURL(t *testing.T) {
	tests := []struct {
		in     string
		scheme string
		addr   string
		user   string
		socks  bool
		remote bool
	}{
		{"127.0.0.1:8080", "http", "127.0.0.1:8080", "", false, true},
		{"http://proxy.local", "http", "proxy.local:8080", "", false, true},
		{"https://proxy.local", "https", "proxy.local:8443", "", false, true},
		{"socks5://u:p@10.0.0.1", "socks5", "10.0.0.1:1080", "u", true, false},
		{"SOCKS5H://[::1]:9050", "socks5h", "[::1]:9050", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg, err := ParseProxyURL(tt.in)
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, tt.scheme, cfg.Scheme)
			assert.Equal(t, tt.addr, cfg.Address())
			assert.Equal(t, tt.user, cfg.Username)
			assert.Equal(t, tt.socks, cfg.IsSOCKS())
			assert.Equal(t, tt.remote, cfg.RemoteDNS())
		})
	}
}

func TestParseProxyURL_Empty(t *testing.T) {
	cfg, err := ParseProxyURL("")
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestParseProxyURL_Invalid(t *testing.T) {
	for _, in := range []string{"ftp://x:21", "socks4://x", "http://:8080"} {
		_, err := ParseProxyURL(in)
		assert.ErrorIs(t, err, ErrProxy, in)
	}
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("FIREFOX")
	require.NoError(t, err)
	assert.Equal(t, "firefox", p.Name)
	assert.NotNil(t, p.ClientHello)

	for _, p := range Profiles() {
		assert.NotNil(t, p.ClientHello, p.Name)
	}

	_, err = ProfileByName("")
	assert.ErrorIs(t, err, ErrProfile)
}
