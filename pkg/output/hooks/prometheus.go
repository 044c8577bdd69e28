package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/duration"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes send metrics for Prometheus scraping.
// Counters track final variant states per encoding, a histogram tracks
// response time, and gauges carry the last run's duration and variant count.
type PrometheusHook struct {
	server   *http.Server
	listener net.Listener
	registry *prometheus.Registry
	opts     PrometheusOptions
	logger   *slog.Logger

	variantsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	divergingTotal  *prometheus.CounterVec
	responseSeconds *prometheus.HistogramVec
	responseBytes   *prometheus.HistogramVec
	runDuration     prometheus.Gauge
	runVariants     prometheus.Gauge

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Addr is the listen address for the metrics server (default: ":9090").
	Addr string

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// Logger receives server errors (default: slog.Default()).
	Logger *slog.Logger
}

// NewPrometheusHook creates the hook and starts serving metrics.
// The listener is opened before returning, so a busy port is reported
// here rather than lost in a goroutine.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Addr == "" {
		opts.Addr = ":9090"
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}

	h := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
		logger:   orDefault(opts.Logger),
	}
	if err := h.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}
	h.listener = ln
	h.startServer()
	return h, nil
}

func (h *PrometheusHook) initMetrics() error {
	ns := defaults.MetricsNamespace

	h.variantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "variants_total",
			Help:      "Variants that reached a final state, by encoding and state",
		},
		[]string{"encoding", "family", "state"},
	)
	h.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "generation_errors_total",
			Help:      "Encodings that could not be generated, by error type",
		},
		[]string{"encoding", "type"},
	)
	h.divergingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "diverging_total",
			Help:      "Variants whose response differs from the baseline",
		},
		[]string{"encoding"},
	)
	h.responseSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "response_time_seconds",
			Help:      "Wall-clock time of one send, dial to last byte",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"state"},
	)
	h.responseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "response_bytes",
			Help:      "Size of raw responses",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		},
		[]string{"family"},
	)
	h.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run",
	})
	h.runVariants = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "run_variants",
		Help:      "Variants generated by the last run",
	})

	collectors := []prometheus.Collector{
		h.variantsTotal,
		h.errorsTotal,
		h.divergingTotal,
		h.responseSeconds,
		h.responseBytes,
		h.runDuration,
		h.runVariants,
	}
	for _, c := range collectors {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *PrometheusHook) startServer() {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	h.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  duration.ShutdownGrace,
		WriteTimeout: duration.ShutdownGrace,
	}

	go func() {
		if err := h.server.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Warn("prometheus: metrics server error", slog.String("error", err.Error()))
		}
	}()
}

// OnEvent updates metrics from result, error and summary events.
func (h *PrometheusHook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.StartEvent:
		h.runVariants.Set(float64(e.Variants))
	case *events.ResultEvent:
		h.handleResult(e.Result)
	case *events.ErrorEvent:
		h.errorsTotal.WithLabelValues(e.Encoding, e.ErrorType).Inc()
	case *events.SummaryEvent:
		h.runDuration.Set(e.Duration)
	}
	return nil
}

func (h *PrometheusHook) handleResult(r events.ResultInfo) {
	if !r.Final() {
		return
	}
	h.variantsTotal.WithLabelValues(r.Encoding, r.Family, r.State).Inc()
	if r.Diverges {
		h.divergingTotal.WithLabelValues(r.Encoding).Inc()
	}
	if r.LatencyMs > 0 {
		h.responseSeconds.WithLabelValues(r.State).Observe(r.LatencyMs / 1000.0)
	}
	if r.State == "Done" {
		h.responseBytes.WithLabelValues(r.Family).Observe(float64(r.ResponseLength))
	}
}

// EventTypes returns the event types this hook handles.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeStart,
		events.EventTypeResult,
		events.EventTypeError,
		events.EventTypeSummary,
	}
}

// Registry returns the hook's private registry.
func (h *PrometheusHook) Registry() *prometheus.Registry {
	return h.registry
}

// MetricsAddr returns the URL where metrics are served.
func (h *PrometheusHook) MetricsAddr() string {
	addr := h.listener.Addr().(*net.TCPAddr)
	host := "localhost"
	if !addr.IP.IsUnspecified() {
		host = addr.IP.String()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port)) + h.opts.Path
}

// Close shuts down the metrics server.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), duration.ShutdownGrace)
	defer cancel()
	return h.server.Shutdown(ctx)
}
