package writers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*CSVWriter)(nil)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

// CSVWriter writes one row per variant in its final state.
// Rows for the transient Ready and Sent states are skipped, so a sweep
// produces exactly one row per variant that was sent. With IncludePending
// set, variants that never left Ready are written on Close as well.
type CSVWriter struct {
	w         io.Writer
	csvWriter *csv.Writer
	mu        sync.Mutex
	opts      CSVOptions
	pending   map[int]events.ResultInfo
	summary   *events.SummaryEvent
}

// CSVOptions configures the CSV writer behavior.
type CSVOptions struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool

	// Delimiter sets the field delimiter character.
	// Default is comma when zero value.
	Delimiter rune

	// ExcelCompatible adds UTF-8 BOM for Excel compatibility.
	ExcelCompatible bool

	// SanitizeFormulas prevents CSV injection by prefixing dangerous characters.
	// Dangerous characters: = + - @ TAB CR
	SanitizeFormulas bool

	// IncludePending writes variants still in Ready on Close (generate-only runs).
	IncludePending bool
}

var csvColumns = []string{
	"index",
	"encoding",
	"family",
	"content_type",
	"status",
	"request_length",
	"response_length",
	"elapsed_ms",
	"state",
	"error",
	"diverges",
}

// sanitizeForCSV prevents CSV injection by prefixing dangerous characters.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// NewCSVWriter creates a new CSV writer.
// The writer is safe for concurrent use.
func NewCSVWriter(w io.Writer, opts CSVOptions) *CSVWriter {
	if opts.ExcelCompatible {
		_, _ = w.Write([]byte(utf8BOM))
	}

	csvWriter := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		csvWriter.Comma = opts.Delimiter
	}

	cw := &CSVWriter{
		w:         w,
		csvWriter: csvWriter,
		opts:      opts,
		pending:   make(map[int]events.ResultInfo),
	}
	if opts.IncludeHeader {
		_ = csvWriter.Write(csvColumns)
		csvWriter.Flush()
	}
	return cw
}

// Write writes a row for a result event in a final state.
// Summary events are captured for output on Close.
func (cw *CSVWriter) Write(event events.Event) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		if !e.Result.Final() {
			cw.pending[e.Result.Index] = e.Result
			return nil
		}
		delete(cw.pending, e.Result.Index)
		return cw.writeRow(e.Result)
	case *events.SummaryEvent:
		cw.summary = e
	}
	return nil
}

func (cw *CSVWriter) writeRow(r events.ResultInfo) error {
	status := ""
	if r.StatusCode != 0 {
		status = strconv.Itoa(r.StatusCode)
	}
	row := []string{
		strconv.Itoa(r.Index),
		r.Encoding,
		r.Family,
		r.ContentType,
		status,
		strconv.Itoa(r.RequestLength),
		strconv.Itoa(r.ResponseLength),
		strconv.FormatFloat(r.LatencyMs, 'f', 2, 64),
		r.State,
		r.Error,
		strconv.FormatBool(r.Diverges),
	}
	if cw.opts.SanitizeFormulas {
		for i, field := range row {
			row[i] = sanitizeForCSV(field)
		}
	}
	return cw.csvWriter.Write(row)
}

// Flush flushes the CSV writer's internal buffer.
func (cw *CSVWriter) Flush() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.csvWriter.Flush()
	return cw.csvWriter.Error()
}

// Close writes pending rows and the summary, then flushes.
// If the underlying writer implements io.Closer, it will be closed.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.opts.IncludePending {
		for _, r := range sortedResults(cw.pending) {
			if err := cw.writeRow(r); err != nil {
				return fmt.Errorf("csv: write: %w", err)
			}
		}
	}
	if cw.summary != nil {
		cw.writeSummaryLocked()
	}

	cw.csvWriter.Flush()
	if err := cw.csvWriter.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}

	if closer, ok := cw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// writeSummaryLocked writes a summary section at the end of the CSV.
// Must be called with mu held.
func (cw *CSVWriter) writeSummaryLocked() {
	t := cw.summary.Totals
	_ = cw.csvWriter.Write([]string{})
	_ = cw.csvWriter.Write([]string{"# SUMMARY"})
	_ = cw.csvWriter.Write([]string{"Variants", strconv.Itoa(t.Variants)})
	_ = cw.csvWriter.Write([]string{"Generation Failed", strconv.Itoa(t.Failed)})
	_ = cw.csvWriter.Write([]string{"Done", strconv.Itoa(t.Done)})
	_ = cw.csvWriter.Write([]string{"No Response", strconv.Itoa(t.NoResponse)})
	_ = cw.csvWriter.Write([]string{"Errors", strconv.Itoa(t.Errors)})
	_ = cw.csvWriter.Write([]string{"Diverging", strconv.Itoa(t.Diverging)})
}

// SupportsEvent returns true for result and summary events.
func (cw *CSVWriter) SupportsEvent(eventType events.EventType) bool {
	return eventType == events.EventTypeResult || eventType == events.EventTypeSummary
}
