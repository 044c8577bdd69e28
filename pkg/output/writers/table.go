package writers

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/waftester/wafcharset/pkg/duration"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
	"github.com/waftester/wafcharset/pkg/ui"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*TableWriter)(nil)

// boxChars contains Unicode box-drawing characters.
var boxChars = borderChars{
	TopLeft: "┌", TopRight: "┐", BottomLeft: "└", BottomRight: "┘",
	Horizontal: "─", Vertical: "│", LeftT: "├", RightT: "┤",
}

// asciiChars contains ASCII fallback characters for box drawing.
var asciiChars = borderChars{
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
	Horizontal: "-", Vertical: "|", LeftT: "+", RightT: "+",
}

type borderChars struct {
	TopLeft, TopRight, BottomLeft, BottomRight string
	Horizontal, Vertical, LeftT, RightT        string
}

// TableConfig configures the table writer behavior.
type TableConfig struct {
	// Streaming prints one line per variant as soon as it reaches a final
	// state, in addition to the table on Close.
	Streaming bool

	// DisableUnicode forces ASCII box drawing.
	DisableUnicode bool

	// HideTable suppresses the result table, leaving streamed lines and the summary.
	HideTable bool
}

// TableWriter renders the result table of a run to a terminal.
// Rows hold the latest state of every variant, in index order.
// The writer is safe for concurrent use.
type TableWriter struct {
	w       io.Writer
	mu      sync.Mutex
	config  TableConfig
	chars   borderChars
	results map[int]events.ResultInfo
	errors  []*events.ErrorEvent
	summary *events.SummaryEvent
}

// NewTableWriter creates a new table writer.
func NewTableWriter(w io.Writer, config TableConfig) *TableWriter {
	chars := boxChars
	if config.DisableUnicode || !unicodeSupported(w) {
		chars = asciiChars
	}
	return &TableWriter{
		w:       w,
		config:  config,
		chars:   chars,
		results: make(map[int]events.ResultInfo),
	}
}

// Write records an event and, in streaming mode, prints final results.
func (tw *TableWriter) Write(event events.Event) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		tw.results[e.Result.Index] = e.Result
		if tw.config.Streaming && e.Result.Final() {
			_, err := fmt.Fprintln(tw.w, formatResultLine(e.Result))
			return err
		}
	case *events.ErrorEvent:
		tw.errors = append(tw.errors, e)
		if tw.config.Streaming {
			_, err := fmt.Fprintln(tw.w, formatErrorLine(e))
			return err
		}
	case *events.SummaryEvent:
		tw.summary = e
	}
	return nil
}

// formatResultLine renders a bracketed status line:
//
//	[06] [UTF-16LE] [200] [Done] [41.2ms] application/json; charset=utf-16le
func formatResultLine(r events.ResultInfo) string {
	var sb strings.Builder
	bracket(&sb, ui.StatLabelStyle.Render(fmt.Sprintf("%02d", r.Index)))
	bracket(&sb, ui.FamilyStyle(r.Family).Render(r.Encoding))
	bracket(&sb, ui.StatusText(r.StatusCode))
	bracket(&sb, ui.StateStyle(r.State).Render(r.State))
	latency := ui.StatLabelStyle
	if r.LatencyMs >= float64(duration.SlowResponse.Milliseconds()) {
		latency = ui.WarnStyle
	}
	bracket(&sb, latency.Render(formatLatency(r.LatencyMs)))
	if r.Diverges {
		bracket(&sb, ui.WarnStyle.Render("diverges"))
	}
	sb.WriteString(r.ContentType)
	if r.Error != "" {
		sb.WriteString(" ")
		sb.WriteString(ui.BracketStyle.Render(r.Error))
	}
	return sb.String()
}

func formatErrorLine(e *events.ErrorEvent) string {
	var sb strings.Builder
	bracket(&sb, ui.FailStyle.Render(e.ErrorType))
	if e.Encoding != "" {
		bracket(&sb, e.Encoding)
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func bracket(sb *strings.Builder, s string) {
	sb.WriteString(ui.BracketStyle.Render("["))
	sb.WriteString(s)
	sb.WriteString(ui.BracketStyle.Render("]"))
	sb.WriteString(" ")
}

func formatLatency(ms float64) string {
	if ms == 0 {
		return "-"
	}
	if ms >= 1000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.1fms", ms)
}

// Flush is a no-op; the table is rendered on Close.
func (tw *TableWriter) Flush() error {
	return nil
}

// Close renders the table, generation errors and summary. The underlying writer is not
// closed; it is normally stdout.
func (tw *TableWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	var sb strings.Builder
	if !tw.config.HideTable && len(tw.results) > 0 {
		tw.writeResultsTable(&sb)
	}
	if !tw.config.Streaming {
		for _, e := range tw.errors {
			sb.WriteString(formatErrorLine(e))
			sb.WriteString("\n")
		}
	}
	if tw.summary != nil {
		tw.writeSummary(&sb)
	}
	_, err := io.WriteString(tw.w, sb.String())
	return err
}

// SupportsEvent returns true for result, error and summary events.
func (tw *TableWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeResult, events.EventTypeError, events.EventTypeSummary:
		return true
	default:
		return false
	}
}

var tableColumns = []string{
	"index", "encoding", "content_type", "status", "request_length",
	"response_length", "elapsed", "state",
}

func tableRow(r events.ResultInfo) []string {
	respLen := "-"
	if r.State == "Done" {
		respLen = strconv.Itoa(r.ResponseLength)
	}
	state := ui.StateStyle(r.State).Render(r.State)
	if r.Diverges {
		state += ui.WarnStyle.Render(" *")
	}
	return []string{
		strconv.Itoa(r.Index),
		ui.FamilyStyle(r.Family).Render(r.Encoding),
		r.ContentType,
		ui.StatusText(r.StatusCode),
		strconv.Itoa(r.RequestLength),
		respLen,
		formatLatency(r.LatencyMs),
		state,
	}
}

func (tw *TableWriter) writeResultsTable(sb *strings.Builder) {
	header := make([]string, len(tableColumns))
	for i, c := range tableColumns {
		header[i] = ui.Title(c)
	}
	rows := make([][]string, 0, len(tw.results))
	for _, r := range sortedResults(tw.results) {
		rows = append(rows, tableRow(r))
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	c := tw.chars
	rule := func(left, right string) {
		sb.WriteString(left)
		for i, w := range widths {
			sb.WriteString(strings.Repeat(c.Horizontal, w+2))
			if i < len(widths)-1 {
				sb.WriteString(c.Horizontal)
			}
		}
		sb.WriteString(right)
		sb.WriteString("\n")
	}
	line := func(cells []string, style func(string) string) {
		sb.WriteString(c.Vertical)
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(padRight(style(cell), widths[i]))
			sb.WriteString(" ")
			if i < len(cells)-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(c.Vertical)
		sb.WriteString("\n")
	}

	rule(c.TopLeft, c.TopRight)
	line(header, func(s string) string { return ui.StatValueStyle.Render(s) })
	rule(c.LeftT, c.RightT)
	for _, row := range rows {
		line(row, func(s string) string { return s })
	}
	rule(c.BottomLeft, c.BottomRight)
}

func (tw *TableWriter) writeSummary(sb *strings.Builder) {
	t := tw.summary.Totals
	sep := ui.BracketStyle.Render(" | ")
	parts := []string{
		ui.StatLabelStyle.Render("Variants") + " " + ui.StatValueStyle.Render(strconv.Itoa(t.Variants)),
		ui.StateStyle("Done").Render("Done " + strconv.Itoa(t.Done)),
		ui.StateStyle("No Response").Render("No Response " + strconv.Itoa(t.NoResponse)),
		ui.StateStyle("Error").Render("Error " + strconv.Itoa(t.Errors)),
	}
	if t.Failed > 0 {
		parts = append(parts, ui.FailStyle.Render("Not Generated "+strconv.Itoa(t.Failed)))
	}
	if t.Diverging > 0 {
		parts = append(parts, ui.WarnStyle.Render("Diverging "+strconv.Itoa(t.Diverging)))
	}
	sb.WriteString(strings.Join(parts, sep))
	if tw.summary.Duration > 0 {
		sb.WriteString(sep)
		sb.WriteString(ui.StatLabelStyle.Render(fmt.Sprintf("%.2fs", tw.summary.Duration)))
	}
	sb.WriteString("\n")
}

// padRight pads s to width visible columns, ignoring ANSI sequences.
func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
