// Package sender delivers generated variants to a target through a
// transport and records each outcome.
//
// Sends never overlap: one Sender has at most one request in flight. A sweep
// over many variants is sequential in index order with a fixed pause between
// sends, never retries and never stops early; a failed send only marks its
// own result as Error.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/duration"
	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/results"
	"github.com/waftester/wafcharset/pkg/transport"
)

// Target is where variants are sent.
type Target struct {
	Host   string
	Port   int
	UseTLS bool
}

// String returns host:port, bracketing IPv6 hosts.
func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Describe returns host:port with the scheme in parentheses.
func (t Target) Describe() string {
	if t.UseTLS {
		return t.String() + " (TLS)"
	}
	return t.String() + " (plain)"
}

// Sink receives result updates. *results.Owner implements it.
type Sink interface {
	Post(u results.Update) error
}

// Config holds sender configuration
type Config struct {
	Target    Target
	Transport transport.Transport
	Sink      Sink // optional

	// Delay is the pause between sends in SendAll; 0 uses duration.SendDelay.
	Delay time.Duration
	// RateLimit caps sends per second on top of Delay; 0 disables it.
	RateLimit int
	// Timeout bounds each send; 0 uses duration.SendTimeout.
	Timeout time.Duration

	Logger *slog.Logger
}

// Sender sends variants one at a time.
type Sender struct {
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration)

	mu       sync.Mutex // one send in flight
	baseline *results.Result
}

// New creates a sender.
func New(cfg Config) *Sender {
	if cfg.Delay <= 0 {
		cfg.Delay = duration.SendDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = duration.SendTimeout
	}
	s := &Sender{cfg: cfg, logger: cfg.Logger, sleep: sleepCtx}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return s
}

// SendOne sends v and returns its final result. The Sent transition and the
// final result are posted to the sink. Any response bytes make the result
// Done; Error is reserved for sends that got nothing back.
func (s *Sender) SendOne(ctx context.Context, v fuzz.Variant) results.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(ctx, v)
}

func (s *Sender) send(ctx context.Context, v fuzz.Variant) results.Result {
	r := results.NewReady(v)
	r.State = results.StateSent
	s.post(r)

	if err := ctx.Err(); err != nil {
		return s.finish(s.fail(r, err))
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return s.finish(s.fail(r, err))
		}
	}

	s.logger.Info("sending variant",
		slog.Int("index", v.Index),
		slog.String("encoding", v.Spec.Name),
	)

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	start := time.Now()
	resp, err := s.cfg.Transport.Send(sendCtx, s.cfg.Target.Host, s.cfg.Target.Port, s.cfg.Target.UseTLS, v.FullRequest)
	r.Elapsed = time.Since(start)
	cancel()

	// Bytes that arrived count as an answer even when the connection failed
	// afterwards; the failure is kept in Error.
	switch {
	case len(resp) > 0:
		r.State = results.StateDone
		r.Response = resp
		r.ResponseLength = len(resp)
		r.ResponseHash = results.HashBody(resp)
		code, perr := transport.StatusCode(resp)
		switch {
		case err != nil:
			r.Error = err.Error()
		case perr != nil:
			r.Error = perr.Error()
		}
		r.StatusCode = code
		s.logger.Info("variant answered",
			slog.Int("index", v.Index),
			slog.Int("status", code),
			slog.Int("length", r.ResponseLength),
			slog.Int64("elapsed_ms", r.ElapsedMS()),
		)
	case err != nil:
		r = s.fail(r, err)
	default:
		r.State = results.StateNoResponse
		s.logger.Warn("no response", slog.Int("index", v.Index))
	}

	if s.baseline != nil {
		r.Diverges = r.DivergesFrom(*s.baseline)
	}
	return s.finish(r)
}

func (s *Sender) fail(r results.Result, err error) results.Result {
	r.State = results.StateError
	r.Error = err.Error()
	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) {
		level = slog.LevelDebug
	}
	s.logger.Log(context.Background(), level, "send failed",
		slog.Int("index", r.Index),
		slog.String("error", r.Error),
	)
	return r
}

func (s *Sender) finish(r results.Result) results.Result {
	s.post(r)
	return r
}

func (s *Sender) post(r results.Result) {
	if s.cfg.Sink == nil {
		return
	}
	if err := s.cfg.Sink.Post(results.Update{Kind: results.UpdateUpsert, Result: r}); err != nil {
		s.logger.Warn("dropping result update",
			slog.Int("index", r.Index),
			slog.String("error", err.Error()),
		)
	}
}

// SendAll sends every variant in order, pausing between sends, and returns
// their results in the same order. It never stops early: once ctx is done
// the remaining sends fail fast as Error.
func (s *Sender) SendAll(ctx context.Context, variants []fuzz.Variant) []results.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]results.Result, 0, len(variants))
	for i, v := range variants {
		if i > 0 {
			s.sleep(ctx, s.cfg.Delay)
		}
		out = append(out, s.send(ctx, v))
	}
	s.logger.Info("all fuzz requests sent", slog.Int("count", len(out)))
	return out
}

// Baseline sends the unmodified template request and remembers its outcome.
// Later results are flagged Diverges when their status or body differs.
// The baseline result has index 0 and is not posted to the sink.
func (s *Sender) Baseline(ctx context.Context, request []byte) results.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	sink := s.cfg.Sink
	s.cfg.Sink = nil
	s.baseline = nil
	r := s.send(ctx, fuzz.Variant{Spec: baselineSpec, FullRequest: request})
	s.cfg.Sink = sink

	if r.State == results.StateDone {
		s.baseline = &r
	}
	return r
}

var baselineSpec = charset.EncodingSpec{Name: "baseline"}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
