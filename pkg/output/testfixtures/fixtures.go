package testfixtures

import (
	"strings"

	"github.com/waftester/wafcharset/pkg/output/events"
)

const (
	// RunID is shared by every fixture event.
	RunID = "run-1"
	// Target is the host:port every fixture run is aimed at.
	Target = "example.com:443"
)

// Start creates the start event of a fuzz run with n variants.
func Start(n int) *events.StartEvent {
	return &events.StartEvent{
		BaseEvent: events.NewBase(events.EventTypeStart, RunID),
		Target:    Target,
		Mode:      "fuzz",
		Variants:  n,
		Config: events.RunConfig{
			ContentType:         "application/json; charset={encoding}",
			UpdateContentType:   true,
			UpdateContentLength: true,
			Send:                true,
			TLS:                 true,
		},
	}
}

// Result creates one state transition of the variant at index. Lengths
// and latency are fixed; callers adjust the returned event as needed.
func Result(index int, encoding, state string, status int) *events.ResultEvent {
	return &events.ResultEvent{
		BaseEvent: events.NewBase(events.EventTypeResult, RunID),
		Target:    Target,
		Result: events.ResultInfo{
			Index:          index,
			Encoding:       encoding,
			Family:         "Unicode",
			ContentType:    "application/json; charset=" + strings.ToLower(encoding),
			State:          state,
			StatusCode:     status,
			RequestLength:  200 + index,
			ResponseLength: 512,
			LatencyMs:      12.5,
		},
	}
}

// Failure creates the error event of an encoding that could not be generated.
func Failure(index int, encoding, message string) *events.ErrorEvent {
	return &events.ErrorEvent{
		BaseEvent: events.NewBase(events.EventTypeError, RunID),
		Index:     index,
		Encoding:  encoding,
		ErrorType: "encoding",
		Message:   message,
	}
}

// Summary creates the summary matching Sweep.
func Summary() *events.SummaryEvent {
	return &events.SummaryEvent{
		BaseEvent: events.NewBase(events.EventTypeSummary, RunID),
		Target:    Target,
		Totals:    events.SummaryTotal{Variants: 3, Done: 2, Errors: 1, Diverging: 1},
		Duration:  1.25,
	}
}

// Sweep is the event stream of a three-variant run: each variant goes
// Ready, Sent, then a final state. Index 6 diverges with a 403.
func Sweep() []events.Event {
	diverging := Result(6, "UTF-16LE", "Done", 403)
	diverging.Result.Diverges = true
	return []events.Event{
		Start(3),
		Result(6, "UTF-16LE", "Ready", 0),
		Result(4, "UTF-16", "Ready", 0),
		Result(5, "UTF-16BE", "Ready", 0),
		Result(4, "UTF-16", "Sent", 0),
		Result(4, "UTF-16", "Done", 200),
		Result(5, "UTF-16BE", "Sent", 0),
		Result(5, "UTF-16BE", "Error", 0),
		Result(6, "UTF-16LE", "Sent", 0),
		diverging,
		Summary(),
	}
}
