package writers

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/waftester/wafcharset/pkg/jsonutil"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*JSONWriter)(nil)

// JSONWriter writes a run as one JSON document.
// Unlike JSONLWriter, which streams every state change, this writer keeps
// only the latest state of each variant and writes the document on Close.
type JSONWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    JSONOptions
	runID   string
	start   *events.StartEvent
	results map[int]events.ResultInfo
	errors  []*events.ErrorEvent
	summary *events.SummaryEvent
}

// JSONOptions configures the JSON writer behavior.
type JSONOptions struct {
	// Pretty enables indented JSON output.
	Pretty bool

	// IndentSize sets the number of spaces for indentation (default 2).
	IndentSize int
}

// jsonDocument is the shape written on Close.
type jsonDocument struct {
	RunID   string               `json:"run_id"`
	Start   *events.StartEvent   `json:"start,omitempty"`
	Results []events.ResultInfo  `json:"results"`
	Errors  []*events.ErrorEvent `json:"errors,omitempty"`
	Summary *events.SummaryEvent `json:"summary,omitempty"`
}

// NewJSONWriter creates a new JSON document writer that writes to w.
// The writer is safe for concurrent use.
func NewJSONWriter(w io.Writer, opts JSONOptions) *JSONWriter {
	if opts.IndentSize == 0 {
		opts.IndentSize = 2
	}
	return &JSONWriter{
		w:       w,
		opts:    opts,
		results: make(map[int]events.ResultInfo),
	}
}

// Write records an event. A result event replaces any earlier state of
// the same variant index.
func (jw *JSONWriter) Write(event events.Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.runID == "" {
		jw.runID = event.ScanID()
	}
	switch e := event.(type) {
	case *events.StartEvent:
		jw.start = e
	case *events.ResultEvent:
		jw.results[e.Result.Index] = e.Result
	case *events.ErrorEvent:
		jw.errors = append(jw.errors, e)
	case *events.SummaryEvent:
		jw.summary = e
	}
	return nil
}

// Flush is a no-op; the document is written on Close.
func (jw *JSONWriter) Flush() error {
	return nil
}

// Close writes the document, results ordered by index, and closes the
// underlying writer if it implements io.Closer.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	doc := jsonDocument{
		RunID:   jw.runID,
		Start:   jw.start,
		Results: sortedResults(jw.results),
		Errors:  jw.errors,
		Summary: jw.summary,
	}

	encoder := jsonutil.NewStreamEncoder(jw.w)
	if jw.opts.Pretty {
		encoder.SetIndent("", strings.Repeat(" ", jw.opts.IndentSize))
	}
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}

	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for all event types.
func (jw *JSONWriter) SupportsEvent(_ events.EventType) bool {
	return true
}

// sortedResults flattens a latest-state map into index order.
func sortedResults(m map[int]events.ResultInfo) []events.ResultInfo {
	out := make([]events.ResultInfo, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
