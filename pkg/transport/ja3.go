package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"

	utls "github.com/refraction-networking/utls"
)

// JA3Profile is a named uTLS ClientHello used to pick the TLS fingerprint a
// target sees.
type JA3Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ClientHello *utls.ClientHelloID `json:"-"`
}

// Profiles returns the built-in ClientHello profiles.
func Profiles() []*JA3Profile {
	return []*JA3Profile{
		{Name: "chrome", Description: "Chrome 120", ClientHello: &utls.HelloChrome_120},
		{Name: "chrome-psk", Description: "Chrome 112 with PSK, shuffled extensions", ClientHello: &utls.HelloChrome_112_PSK_Shuf},
		{Name: "firefox", Description: "Firefox 120", ClientHello: &utls.HelloFirefox_120},
		{Name: "safari", Description: "Safari 16", ClientHello: &utls.HelloSafari_16_0},
		{Name: "ios", Description: "Safari on iOS 14", ClientHello: &utls.HelloIOS_14},
		{Name: "edge", Description: "Edge 106", ClientHello: &utls.HelloEdge_106},
		{Name: "randomized", Description: "Randomized fingerprint", ClientHello: &utls.HelloRandomized},
	}
}

// ProfileByName returns the profile with the given name (case-insensitive).
func ProfileByName(name string) (*JA3Profile, error) {
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrProfile, name)
}

// handshaker upgrades a dialed connection to TLS.
type handshaker func(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error)

// stdHandshake uses crypto/tls. Certificates are not verified: targets are
// commonly fronted by self-signed or mismatched certificates.
func stdHandshake(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // probing tool, certificate identity is irrelevant
		NextProtos:         []string{"http/1.1"},
	}
	if net.ParseIP(serverName) == nil {
		cfg.ServerName = serverName
	}
	tc := tls.Client(conn, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tc, nil
}

// utlsHandshake returns a handshaker that sends the profile's ClientHello.
// ALPN is pinned to http/1.1 where the profile can be expanded to a spec,
// since the request bytes are HTTP/1.x.
func utlsHandshake(profile *JA3Profile) handshaker {
	return func(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
		cfg := &utls.Config{InsecureSkipVerify: true} //nolint:gosec // see stdHandshake
		if net.ParseIP(serverName) == nil {
			cfg.ServerName = serverName
		}

		var uconn *utls.UConn
		if spec, err := utls.UTLSIdToSpec(*profile.ClientHello); err == nil {
			for _, ext := range spec.Extensions {
				if alpn, ok := ext.(*utls.ALPNExtension); ok {
					alpn.AlpnProtocols = []string{"http/1.1"}
				}
			}
			uconn = utls.UClient(conn, cfg, utls.HelloCustom)
			if err := uconn.ApplyPreset(&spec); err != nil {
				return nil, err
			}
		} else {
			uconn = utls.UClient(conn, cfg, *profile.ClientHello)
		}

		if err := uconn.HandshakeContext(ctx); err != nil {
			return nil, err
		}
		if proto := uconn.ConnectionState().NegotiatedProtocol; proto != "" && proto != "http/1.1" {
			_ = uconn.Close()
			return nil, fmt.Errorf("server negotiated %s, raw requests need http/1.1", proto)
		}
		return uconn, nil
	}
}
