package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/duration"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*OTelHook)(nil)

// OTelHook exports a run as an OpenTelemetry trace: one root span per run
// and one child span per send, timed from the measured latency.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	mu       sync.Mutex
	rootSpan trace.Span
	rootCtx  context.Context
	closed   bool
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "waf-charset").
	ServiceName string

	// Insecure uses a plaintext connection.
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout bounds the final flush (default: 5s).
	ShutdownTimeout time.Duration
}

// NewOTelHook creates a hook exporting to an OTLP collector over gRPC.
// The connection is established lazily, so an unreachable collector never
// blocks a run.
func NewOTelHook(ctx context.Context, opts OTelOptions) (*OTelHook, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create exporter: %w", err)
	}
	return newOTelHook(opts, sdktrace.WithBatcher(exporter)), nil
}

// newOTelHook builds the provider around the given span processor option.
func newOTelHook(opts OTelOptions, processor sdktrace.TracerProviderOption) *OTelHook {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.ShutdownGrace
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
	)
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &OTelHook{
		opts:           opts,
		tracerProvider: tp,
		tracer:         tp.Tracer(defaults.TracerName),
	}
}

// OnEvent records the event in the current trace.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.StartEvent:
		h.handleStart(ctx, e)
	case *events.ResultEvent:
		h.handleResult(e)
	case *events.ErrorEvent:
		h.handleError(e)
	case *events.SummaryEvent:
		h.handleSummary(e)
	}
	return nil
}

func (h *OTelHook) handleStart(ctx context.Context, start *events.StartEvent) {
	if h.rootSpan != nil {
		h.rootSpan.End()
	}
	h.rootCtx, h.rootSpan = h.tracer.Start(ctx, "wafcharset.run",
		trace.WithTimestamp(start.Timestamp()),
		trace.WithAttributes(
			attribute.String("run_id", start.ScanID()),
			attribute.String("mode", start.Mode),
			attribute.String("target", start.Target),
			attribute.Int("variants", start.Variants),
			attribute.String("content_type", start.Config.ContentType),
			attribute.Bool("update_content_type", start.Config.UpdateContentType),
			attribute.Bool("update_content_length", start.Config.UpdateContentLength),
			attribute.Bool("tls", start.Config.TLS),
			attribute.String("ja3_profile", start.Config.JA3Profile),
		),
	)
}

// handleResult emits a client span for each send that reached a final
// state. The span ends at the event time and starts latency earlier.
func (h *OTelHook) handleResult(e *events.ResultEvent) {
	r := e.Result
	if h.rootSpan == nil || !r.Final() {
		return
	}

	end := e.Timestamp()
	start := end.Add(-time.Duration(r.LatencyMs * float64(time.Millisecond)))
	_, span := h.tracer.Start(h.rootCtx, "wafcharset.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int("index", r.Index),
			attribute.String("encoding", r.Encoding),
			attribute.String("family", r.Family),
			attribute.String("content_type", r.ContentType),
			attribute.String("state", r.State),
			attribute.Int("request_length", r.RequestLength),
			attribute.Int("response_length", r.ResponseLength),
			attribute.Bool("diverges", r.Diverges),
		),
	)
	if r.StatusCode != 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCode(r.StatusCode))
	}
	if r.State == "Error" {
		span.SetStatus(codes.Error, r.Error)
	}
	span.End(trace.WithTimestamp(end))
}

func (h *OTelHook) handleError(e *events.ErrorEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.AddEvent("generation_failed", trace.WithAttributes(
		attribute.Int("index", e.Index),
		attribute.String("encoding", e.Encoding),
		attribute.String("error_type", e.ErrorType),
		attribute.String("message", e.Message),
	))
}

func (h *OTelHook) handleSummary(summary *events.SummaryEvent) {
	if h.rootSpan == nil {
		return
	}
	t := summary.Totals
	h.rootSpan.SetAttributes(
		attribute.Int("totals.variants", t.Variants),
		attribute.Int("totals.generation_failed", t.Failed),
		attribute.Int("totals.done", t.Done),
		attribute.Int("totals.no_response", t.NoResponse),
		attribute.Int("totals.errors", t.Errors),
		attribute.Int("totals.diverging", t.Diverging),
		attribute.Float64("duration_sec", summary.Duration),
	)
	if t.Errors > 0 && t.Errors == t.Variants {
		h.rootSpan.SetStatus(codes.Error, "every send failed")
	} else {
		h.rootSpan.SetStatus(codes.Ok, "")
	}
	h.rootSpan.End(trace.WithTimestamp(summary.Timestamp()))
	h.rootSpan = nil
}

// EventTypes returns the event types this hook handles.
func (h *OTelHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeStart,
		events.EventTypeResult,
		events.EventTypeError,
		events.EventTypeSummary,
	}
}

// Close ends any open run span and flushes pending spans.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	if h.rootSpan != nil {
		h.rootSpan.End()
		h.rootSpan = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
	defer cancel()
	if err := h.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("otel: shutdown tracer provider: %w", err)
	}
	return nil
}

// Endpoint returns the OTLP endpoint being used.
func (h *OTelHook) Endpoint() string {
	return h.opts.Endpoint
}
