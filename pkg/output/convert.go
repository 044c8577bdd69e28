package output

import (
	"errors"
	"time"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/output/events"
	"github.com/waftester/wafcharset/pkg/rawhttp"
	"github.com/waftester/wafcharset/pkg/results"
	"github.com/waftester/wafcharset/pkg/transport"
)

// ResultInfo converts a tracked result into its output row.
func ResultInfo(r results.Result) events.ResultInfo {
	v := r.Variant
	return events.ResultInfo{
		Index:          r.Index,
		Encoding:       v.Spec.Name,
		Family:         string(v.Spec.Family),
		ContentType:    v.ContentType,
		State:          r.State.String(),
		StatusCode:     r.StatusCode,
		RequestLength:  v.RequestLength(),
		BodyLength:     len(v.Body),
		ResponseLength: r.ResponseLength,
		LatencyMs:      latencyMs(r.Elapsed),
		Error:          r.Error,
		ResponseHash:   r.ResponseHash,
		Diverges:       r.Diverges,
	}
}

// VariantInfo is the row of a variant that was built but never tracked,
// as in single-encode mode without sending.
func VariantInfo(v fuzz.Variant) events.ResultInfo {
	return ResultInfo(results.NewReady(v))
}

// SummaryTotals converts store counts into the summary event totals.
// Sent results count as Ready: the run ended before they finished.
func SummaryTotals(s results.Summary, failed int) events.SummaryTotal {
	return events.SummaryTotal{
		Variants:   s.Total,
		Failed:     failed,
		Ready:      s.Ready + s.Sent,
		Done:       s.Done,
		NoResponse: s.NoResponse,
		Errors:     s.Error,
		Diverging:  s.Diverging,
	}
}

// ErrorType classifies err for error events and metrics labels.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, charset.ErrEncoding):
		return "encoding"
	case errors.Is(err, rawhttp.ErrParse):
		return "parse"
	case errors.Is(err, transport.ErrTransport):
		return "transport"
	case errors.Is(err, transport.ErrProtocol):
		return "protocol"
	default:
		return "internal"
	}
}

func latencyMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
