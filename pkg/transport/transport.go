// Package transport delivers raw request bytes to a target and returns the
// raw response bytes.
//
// The Raw implementation opens one connection per request (optionally through
// an HTTP CONNECT or SOCKS5 proxy, optionally wrapped in TLS with a chosen
// ClientHello fingerprint), writes the bytes verbatim and reads one HTTP
// response up to its framed end (Content-Length, chunked or close
// delimited). The read also stops at the deadline or the size cap. The bytes
// returned are exactly what arrived on the wire; nothing is pooled, retried
// or reinterpreted.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/waftester/wafcharset/pkg/bufpool"
	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/duration"
)

// Transport sends one raw request and returns the raw response.
// An empty response with a nil error means the server sent nothing.
type Transport interface {
	Send(ctx context.Context, host string, port int, useTLS bool, request []byte) ([]byte, error)
}

// Config configures a Raw transport.
type Config struct {
	DialTimeout     time.Duration // TCP connect (and proxy handshake) timeout
	ReadTimeout     time.Duration // deadline for reading the response after the write
	MaxResponseSize int64         // bytes kept from a response

	Proxy      string // http://, https://, socks5:// or socks5h:// URL
	JA3Profile string // uTLS profile name; empty uses crypto/tls

	Logger *slog.Logger
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		DialTimeout:     duration.DialTimeout,
		ReadTimeout:     duration.ReadTimeout,
		MaxResponseSize: defaults.MaxResponseSize,
	}
}

// Raw is a socket-level Transport. It is safe for concurrent use.
type Raw struct {
	dialer      contextDialer
	proxy       *ProxyConfig
	handshake   handshaker
	readTimeout time.Duration
	maxResponse int64
	logger      *slog.Logger
}

// NewRaw creates a Raw transport. It fails on an unusable proxy URL or an
// unknown TLS profile name.
func NewRaw(cfg Config) (*Raw, error) {
	def := DefaultConfig()
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = def.MaxResponseSize
	}

	pc, err := ParseProxyURL(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	dialer, err := newDialer(pc, &net.Dialer{Timeout: cfg.DialTimeout})
	if err != nil {
		return nil, err
	}

	hs := stdHandshake
	if cfg.JA3Profile != defaults.JA3None {
		profile, err := ProfileByName(cfg.JA3Profile)
		if err != nil {
			return nil, err
		}
		hs = utlsHandshake(profile)
	}

	return &Raw{
		dialer:      dialer,
		proxy:       pc,
		handshake:   hs,
		readTimeout: cfg.ReadTimeout,
		maxResponse: cfg.MaxResponseSize,
		logger:      orDefault(cfg.Logger),
	}, nil
}

// Send implements Transport. Failures are *SendError values wrapping
// ErrTransport. A read that times out after some bytes arrived is not an
// error; the partial response is returned. A read failure after some bytes
// arrived returns both the bytes and the error.
func (r *Raw) Send(ctx context.Context, host string, port int, useTLS bool, request []byte) ([]byte, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	if err := ctx.Err(); err != nil {
		return nil, &SendError{Op: "dial", Addr: addr, Err: err}
	}

	dialAddr := addr
	if r.proxy != nil && !r.proxy.RemoteDNS() {
		ips, err := net.DefaultResolver.LookupHost(ctx, host)
		if err != nil {
			return nil, &SendError{Op: "dial", Addr: addr, Err: err}
		}
		dialAddr = net.JoinHostPort(ips[0], strconv.Itoa(port))
	}

	conn, err := r.dialer.DialContext(ctx, "tcp", dialAddr)
	if err != nil {
		op := "dial"
		if r.proxy != nil {
			op = "proxy"
		}
		return nil, &SendError{Op: op, Addr: addr, Err: err}
	}
	defer conn.Close()

	// Unblock any pending I/O when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if useTLS {
		hsCtx, cancel := context.WithTimeout(ctx, duration.TLSHandshake)
		tc, err := r.handshake(hsCtx, conn, host)
		cancel()
		if err != nil {
			return nil, &SendError{Op: "tls", Addr: addr, Err: err}
		}
		conn = tc
	}

	deadline := time.Now().Add(r.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)
	// A cancel that fired before SetDeadline had its deadline overwritten.
	if err := ctx.Err(); err != nil {
		return nil, &SendError{Op: "write", Addr: addr, Err: err}
	}

	if _, err := conn.Write(request); err != nil {
		return nil, &SendError{Op: "write", Addr: addr, Err: ctxErr(ctx, err)}
	}

	buf := bufpool.Get()
	defer bufpool.Put(buf)
	err = readResponse(io.TeeReader(&io.LimitedReader{R: conn, N: r.maxResponse}, buf), isHead(request))
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	case isTimeout(err):
		if ctx.Err() != nil && buf.Len() == 0 {
			return nil, &SendError{Op: "read", Addr: addr, Err: ctx.Err()}
		}
	default:
		return bufpool.Detach(buf), &SendError{Op: "read", Addr: addr, Err: ctxErr(ctx, err)}
	}

	r.logger.Debug("raw send complete",
		slog.String("addr", addr),
		slog.Bool("tls", useTLS),
		slog.Int("request_bytes", len(request)),
		slog.Int("response_bytes", buf.Len()),
	)
	return bufpool.Detach(buf), nil
}

// readResponse consumes one response from src: interim 1xx responses, then
// the final head and its body up to the framed end. Input that does not parse
// as HTTP is read until the peer closes. Only the consumption matters; src
// copies the raw bytes aside.
func readResponse(src io.Reader, head bool) error {
	rec := &readRecorder{r: src}
	br := bufio.NewReader(rec)
	req := &http.Request{Method: http.MethodGet}
	if head {
		req.Method = http.MethodHead
	}
	for {
		resp, err := http.ReadResponse(br, req)
		if err != nil {
			if rec.err != nil {
				return rec.err
			}
			_, err = io.Copy(io.Discard, br)
			return err
		}
		_, err = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err != nil || resp.StatusCode >= http.StatusOK || resp.StatusCode == http.StatusSwitchingProtocols {
			return err
		}
	}
}

// readRecorder remembers the first read error so a connection failure can
// be told apart from a response that is not HTTP.
type readRecorder struct {
	r   io.Reader
	err error
}

func (rr *readRecorder) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && rr.err == nil {
		rr.err = err
	}
	return n, err
}

// isHead reports whether request is a HEAD, whose response has no body
// whatever its Content-Length says.
func isHead(request []byte) bool {
	return bytes.HasPrefix(request, []byte("HEAD "))
}

// ctxErr prefers the context's error when it caused err.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
