package hooks

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/waftester/wafcharset/pkg/jsonutil"
	"github.com/waftester/wafcharset/pkg/output/events"
	"github.com/waftester/wafcharset/pkg/output/testfixtures"
)

func result(index int, encoding, state string, status int, latencyMs float64) *events.ResultEvent {
	e := testfixtures.Result(index, encoding, state, status)
	e.Result.LatencyMs = latencyMs
	return e
}

func TestLogHook_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := NewLogHook(logger)
	ctx := context.Background()

	require.NoError(t, h.OnEvent(ctx, testfixtures.Start(2)))
	require.NoError(t, h.OnEvent(ctx, result(6, "UTF-16LE", "Sent", 0, 0)))
	require.NoError(t, h.OnEvent(ctx, result(6, "UTF-16LE", "Done", 200, 12)))
	require.NoError(t, h.OnEvent(ctx, result(5, "UTF-16BE", "Error", 0, 3)))
	require.NoError(t, h.OnEvent(ctx, testfixtures.Summary()))

	var records []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, jsonutil.Unmarshal(line, &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 4, "Sent is logged at debug")

	assert.Equal(t, "run started", records[0]["msg"])
	assert.Equal(t, "INFO", records[1]["level"])
	assert.Equal(t, "UTF-16LE", records[1]["encoding"])
	assert.Equal(t, float64(200), records[1]["status"])
	assert.Equal(t, "WARN", records[2]["level"])
	assert.Equal(t, "run finished", records[3]["msg"])
	assert.Equal(t, testfixtures.RunID, records[3]["run_id"])
}

func TestLogHook_NilLoggerUsesDefault(t *testing.T) {
	h := NewLogHook(nil)
	assert.Same(t, slog.Default(), h.logger)
	assert.Empty(t, h.EventTypes())
}

func scrape(t *testing.T, h *PrometheusHook) string {
	t.Helper()
	resp, err := http.Get(h.MetricsAddr())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusHook_CountsFinalStates(t *testing.T) {
	h, err := NewPrometheusHook(PrometheusOptions{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	defer h.Close()

	ctx := context.Background()
	require.NoError(t, h.OnEvent(ctx, testfixtures.Start(2)))
	require.NoError(t, h.OnEvent(ctx, result(6, "UTF-16LE", "Ready", 0, 0)))
	require.NoError(t, h.OnEvent(ctx, result(6, "UTF-16LE", "Sent", 0, 0)))
	done := result(6, "UTF-16LE", "Done", 200, 40)
	done.Result.Diverges = true
	require.NoError(t, h.OnEvent(ctx, done))
	require.NoError(t, h.OnEvent(ctx, result(5, "UTF-16BE", "Error", 0, 2)))
	require.NoError(t, h.OnEvent(ctx, testfixtures.Failure(1, "IBM037", "unsupported rune")))
	require.NoError(t, h.OnEvent(ctx, testfixtures.Summary()))

	text := scrape(t, h)
	assert.Contains(t, text, `wafcharset_variants_total{encoding="UTF-16LE",family="Unicode",state="Done"} 1`)
	assert.Contains(t, text, `wafcharset_variants_total{encoding="UTF-16BE",family="Unicode",state="Error"} 1`)
	assert.NotContains(t, text, `state="Sent"`)
	assert.Contains(t, text, `wafcharset_diverging_total{encoding="UTF-16LE"} 1`)
	assert.Contains(t, text, `wafcharset_generation_errors_total{encoding="IBM037",type="encoding"} 1`)
	assert.Contains(t, text, `wafcharset_response_time_seconds_count{state="Done"} 1`)
	assert.Contains(t, text, `wafcharset_response_bytes_count{family="Unicode"} 1`)
	assert.Contains(t, text, "wafcharset_run_variants 2")
	assert.Contains(t, text, "wafcharset_run_duration_seconds 1.25")
}

func TestPrometheusHook_BusyPort(t *testing.T) {
	h, err := NewPrometheusHook(PrometheusOptions{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	defer h.Close()

	_, err = NewPrometheusHook(PrometheusOptions{Addr: h.listener.Addr().String()})
	assert.Error(t, err)
}

func TestPrometheusHook_CloseIsIdempotent(t *testing.T) {
	h, err := NewPrometheusHook(PrometheusOptions{Addr: "127.0.0.1:0", Path: "/m"})
	require.NoError(t, err)
	assert.Contains(t, h.MetricsAddr(), "/m")

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.NoError(t, h.OnEvent(context.Background(), testfixtures.Summary()), "events after close are ignored")
}

func newRecordedHook() (*OTelHook, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	return newOTelHook(OTelOptions{}, sdktrace.WithSpanProcessor(rec)), rec
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOTelHook_SpanPerSend(t *testing.T) {
	h, rec := newRecordedHook()
	ctx := context.Background()

	require.NoError(t, h.OnEvent(ctx, testfixtures.Start(2)))
	require.NoError(t, h.OnEvent(ctx, result(6, "UTF-16LE", "Sent", 0, 0)))
	require.NoError(t, h.OnEvent(ctx, result(6, "UTF-16LE", "Done", 200, 250)))
	require.NoError(t, h.OnEvent(ctx, result(5, "UTF-16BE", "Error", 0, 3)))
	require.NoError(t, h.OnEvent(ctx, testfixtures.Summary()))
	require.NoError(t, h.Close())

	spans := rec.Ended()
	require.Len(t, spans, 3, "two sends and the run")

	done, failed, run := spans[0], spans[1], spans[2]
	assert.Equal(t, "wafcharset.send", done.Name())
	assert.Equal(t, "wafcharset.run", run.Name())
	assert.Equal(t, run.SpanContext().SpanID(), done.Parent().SpanID())
	assert.Equal(t, run.SpanContext().TraceID(), failed.SpanContext().TraceID())

	assert.InDelta(t, 250*time.Millisecond, done.EndTime().Sub(done.StartTime()), float64(time.Millisecond))
	v, ok := attrValue(done.Attributes(), "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())

	assert.Equal(t, codes.Error, failed.Status().Code)
	v, ok = attrValue(failed.Attributes(), "encoding")
	require.True(t, ok)
	assert.Equal(t, "UTF-16BE", v.AsString())

	assert.Equal(t, codes.Ok, run.Status().Code)
	v, ok = attrValue(run.Attributes(), "totals.errors")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.AsInt64())
}

func TestOTelHook_ResultsWithoutRunAreIgnored(t *testing.T) {
	h, rec := newRecordedHook()
	require.NoError(t, h.OnEvent(context.Background(), result(1, "IBM037", "Done", 200, 5)))
	require.NoError(t, h.Close())
	assert.Empty(t, rec.Ended())
}

func TestOTelHook_CloseEndsOpenRun(t *testing.T) {
	h, rec := newRecordedHook()
	require.NoError(t, h.OnEvent(context.Background(), testfixtures.Start(2)))
	require.NoError(t, h.Close())

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "wafcharset.run", rec.Ended()[0].Name())
	assert.Equal(t, "waf-charset", h.opts.ServiceName)
}

func TestNewOTelHook_LazyConnect(t *testing.T) {
	h, err := NewOTelHook(context.Background(), OTelOptions{Endpoint: "127.0.0.1:1", Insecure: true, ShutdownTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1", h.Endpoint())
	_ = h.Close()
}
