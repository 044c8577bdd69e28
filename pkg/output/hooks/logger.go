// Package hooks provides dispatcher hooks that mirror a run into
// structured logs, Prometheus metrics and OpenTelemetry traces.
package hooks

import (
	"context"
	"log/slog"

	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// Compile-time interface check.
var _ dispatcher.Hook = (*LogHook)(nil)

// LogHook writes every event as a structured log record.
// Final results log at Info (Error state at Warn); the transient Ready
// and Sent states log at Debug.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a log hook. A nil logger uses slog.Default().
func NewLogHook(logger *slog.Logger) *LogHook {
	return &LogHook{logger: orDefault(logger)}
}

// OnEvent logs the event.
func (h *LogHook) OnEvent(ctx context.Context, event events.Event) error {
	run := slog.String("run_id", event.ScanID())

	switch e := event.(type) {
	case *events.StartEvent:
		h.logger.InfoContext(ctx, "run started", run,
			slog.String("mode", e.Mode),
			slog.String("target", e.Target),
			slog.Int("variants", e.Variants),
			slog.String("content_type", e.Config.ContentType),
		)
	case *events.ResultEvent:
		r := e.Result
		level := slog.LevelDebug
		switch {
		case r.State == "Error":
			level = slog.LevelWarn
		case r.Final():
			level = slog.LevelInfo
		}
		attrs := []slog.Attr{
			run,
			slog.Int("index", r.Index),
			slog.String("encoding", r.Encoding),
			slog.String("state", r.State),
		}
		if r.Final() {
			attrs = append(attrs,
				slog.Int("status", r.StatusCode),
				slog.Int("request_length", r.RequestLength),
				slog.Int("response_length", r.ResponseLength),
				slog.Float64("elapsed_ms", r.LatencyMs),
			)
		}
		if r.Diverges {
			attrs = append(attrs, slog.Bool("diverges", true))
		}
		if r.Error != "" {
			attrs = append(attrs, slog.String("error", r.Error))
		}
		h.logger.LogAttrs(ctx, level, "variant", attrs...)
	case *events.ErrorEvent:
		h.logger.WarnContext(ctx, "variant not generated", run,
			slog.Int("index", e.Index),
			slog.String("encoding", e.Encoding),
			slog.String("error_type", e.ErrorType),
			slog.String("error", e.Message),
		)
	case *events.SummaryEvent:
		h.logger.InfoContext(ctx, "run finished", run,
			slog.Int("variants", e.Totals.Variants),
			slog.Int("done", e.Totals.Done),
			slog.Int("no_response", e.Totals.NoResponse),
			slog.Int("errors", e.Totals.Errors),
			slog.Int("diverging", e.Totals.Diverging),
			slog.Float64("duration_sec", e.Duration),
		)
	}
	return nil
}

// EventTypes returns nil: the hook receives every event.
func (h *LogHook) EventTypes() []events.EventType {
	return nil
}
