package transport

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Supported proxy schemes.
//   - http://, https:// - HTTP CONNECT tunnel
//   - socks5:// - SOCKS5, local DNS resolution
//   - socks5h:// - SOCKS5, DNS resolved by the proxy
var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// ProxyConfig is a parsed proxy URL.
type ProxyConfig struct {
	Scheme   string
	Host     string
	Port     string
	Username string
	Password string
}

// ParseProxyURL validates and parses a proxy URL.
// Returns nil, nil if proxyURL is empty. A missing scheme defaults to http.
func ParseProxyURL(proxyURL string) (*ProxyConfig, error) {
	if proxyURL == "" {
		return nil, nil
	}
	if !strings.Contains(proxyURL, "://") {
		proxyURL = "http://" + proxyURL
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxy, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !supportedProxySchemes[scheme] {
		return nil, fmt.Errorf("%w: unsupported scheme %q, supported: http, https, socks5, socks5h", ErrProxy, scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrProxy)
	}
	port := parsed.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "8080"
		case "https":
			port = "8443"
		default:
			port = "1080"
		}
	}

	cfg := &ProxyConfig{Scheme: scheme, Host: host, Port: port}
	if parsed.User != nil {
		cfg.Username = parsed.User.Username()
		cfg.Password, _ = parsed.User.Password()
	}
	return cfg, nil
}

// Address returns the proxy address in host:port form.
func (p *ProxyConfig) Address() string {
	return net.JoinHostPort(p.Host, p.Port)
}

// RemoteDNS reports whether target names are resolved by the proxy.
func (p *ProxyConfig) RemoteDNS() bool {
	return p.Scheme != "socks5"
}

// IsSOCKS reports whether the proxy speaks SOCKS5.
func (p *ProxyConfig) IsSOCKS() bool {
	return p.Scheme == "socks5" || p.Scheme == "socks5h"
}

// contextDialer is satisfied by *net.Dialer and the x/net/proxy dialers.
type contextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// newDialer returns the dialer for cfg; a nil cfg dials directly.
func newDialer(cfg *ProxyConfig, direct *net.Dialer) (contextDialer, error) {
	if cfg == nil {
		return direct, nil
	}
	if !cfg.IsSOCKS() {
		return &connectDialer{proxy: cfg, direct: direct}, nil
	}

	var auth *proxy.Auth
	if cfg.Username != "" {
		auth = &proxy.Auth{User: cfg.Username, Password: cfg.Password}
	}
	d, err := proxy.SOCKS5("tcp", cfg.Address(), auth, direct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxy, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("%w: SOCKS dialer does not support contexts", ErrProxy)
	}
	return cd, nil
}

// connectDialer tunnels through an HTTP proxy with CONNECT.
type connectDialer struct {
	proxy  *ProxyConfig
	direct *net.Dialer
}

func (d *connectDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.direct.DialContext(ctx, network, d.proxy.Address())
	if err != nil {
		return nil, err
	}
	if d.proxy.Scheme == "https" {
		tc, err := stdHandshake(ctx, conn, d.proxy.Host)
		if err != nil {
			conn.Close()
			return nil, err
		}
		conn = tc
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CONNECT %s HTTP/1.1\r\nHost: %s\r\n", address, address)
	if d.proxy.Username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(d.proxy.Username + ":" + d.proxy.Password))
		fmt.Fprintf(&b, "Proxy-Authorization: Basic %s\r\n", cred)
	}
	b.WriteString("\r\n")
	if _, err := conn.Write([]byte(b.String())); err != nil {
		conn.Close()
		return nil, err
	}

	// The proxy sends nothing after its reply until the client speaks, so
	// the buffered reader cannot swallow tunnel bytes.
	resp, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodConnect})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading CONNECT reply: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("CONNECT %s: proxy replied %s", address, resp.Status)
	}

	_ = conn.SetDeadline(time.Time{})
	return conn, nil
}
