package writers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/waftester/wafcharset/pkg/jsonutil"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*TemplateWriter)(nil)

// TemplateConfig configures the template writer.
type TemplateConfig struct {
	// TemplatePath is the path to a custom template file.
	TemplatePath string

	// TemplateString is an inline template string (alternative to TemplatePath).
	TemplateString string

	// BuiltIn is the name of a built-in template: "text-summary", "markdown", "csv".
	BuiltIn string
}

// builtInTemplates contains pre-defined templates for common output formats.
var builtInTemplates = map[string]string{
	"text-summary": `waf-charset Run Summary
=======================
Run:       {{ .RunID }}
Target:    {{ .Target | default "(not sent)" }}
Generated: {{ .Timestamp }}
Duration:  {{ printf "%.2f" .Duration }}s

Variants: {{ .Totals.Variants }}  Done: {{ .Totals.Done }}  No Response: {{ .Totals.NoResponse }}  Errors: {{ .Totals.Errors }}
{{- if .Diverging }}

Diverging from baseline:
{{- range .Diverging }}
  {{ printf "%2d" .Index }} {{ .Encoding | printf "%-13s" }} {{ statusText .StatusCode }}
{{- end }}
{{- end }}
{{- if .FamilyCounts }}

By family:
{{- range $family, $count := .FamilyCounts }}
  {{ $family | printf "%-8s" }} {{ $count }}
{{- end }}
{{- end }}
`,

	"markdown": `# waf-charset results

| # | Encoding | Content-Type | Status | Request | Response | Elapsed (ms) | State |
|---|----------|--------------|--------|---------|----------|--------------|-------|
{{- range .Results }}
| {{ .Index }} | {{ .Encoding }} | {{ escapeMarkdown .ContentType }} | {{ statusText .StatusCode }} | {{ .RequestLength }} | {{ .ResponseLength }} | {{ printf "%.1f" .LatencyMs }} | {{ .State }}{{ if .Diverges }} ⚠{{ end }} |
{{- end }}

**{{ .Totals.Variants }}** variants, **{{ .Totals.Done }}** done, **{{ .Totals.NoResponse }}** without response, **{{ .Totals.Errors }}** errors.
`,

	"csv": `index,encoding,content_type,status,request_length,response_length,elapsed_ms,state
{{- range .Results }}
{{ .Index }},{{ .Encoding }},{{ escapeCSV .ContentType }},{{ .StatusCode }},{{ .RequestLength }},{{ .ResponseLength }},{{ printf "%.2f" .LatencyMs }},{{ escapeCSV .State }}
{{- end }}
`,
}

// BuiltInTemplates returns the names of the built-in templates, sorted.
func BuiltInTemplates() []string {
	names := make([]string, 0, len(builtInTemplates))
	for name := range builtInTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateWriter renders a run using Go templates.
// It keeps the latest state of every variant and renders on Close.
// Sprig functions plus escapeCSV, escapeMarkdown, statusText and json are
// available in templates.
type TemplateWriter struct {
	w       io.Writer
	mu      sync.Mutex
	tmpl    *template.Template
	runID   string
	target  string
	results map[int]events.ResultInfo
	summary *events.SummaryEvent
}

// NewTemplateWriter creates a new template writer.
// It parses the template immediately and returns an error if the template is invalid.
func NewTemplateWriter(w io.Writer, config TemplateConfig) (*TemplateWriter, error) {
	tmpl, err := parseTemplate(config)
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return &TemplateWriter{
		w:       w,
		tmpl:    tmpl,
		results: make(map[int]events.ResultInfo),
	}, nil
}

func parseTemplate(config TemplateConfig) (*template.Template, error) {
	var content string
	switch {
	case config.TemplatePath != "":
		data, err := os.ReadFile(config.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file: %w", err)
		}
		content = string(data)

	case config.TemplateString != "":
		content = config.TemplateString

	case config.BuiltIn != "":
		builtIn, ok := builtInTemplates[config.BuiltIn]
		if !ok {
			return nil, fmt.Errorf("unknown built-in template: %s (available: %s)",
				config.BuiltIn, strings.Join(BuiltInTemplates(), ", "))
		}
		content = builtIn

	default:
		return nil, fmt.Errorf("no template specified: set TemplatePath, TemplateString, or BuiltIn")
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["escapeCSV"] = tmplEscapeCSV
	funcMap["escapeMarkdown"] = tmplEscapeMarkdown
	funcMap["statusText"] = tmplStatusText
	funcMap["json"] = tmplToJSON

	return template.New("waf-charset").Funcs(funcMap).Parse(content)
}

// Write records an event for later rendering.
func (tw *TemplateWriter) Write(event events.Event) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.runID == "" {
		tw.runID = event.ScanID()
	}
	switch e := event.(type) {
	case *events.StartEvent:
		tw.target = e.Target
	case *events.ResultEvent:
		tw.results[e.Result.Index] = e.Result
	case *events.SummaryEvent:
		tw.summary = e
	}
	return nil
}

// Flush is a no-op; the template is rendered on Close.
func (tw *TemplateWriter) Flush() error {
	return nil
}

// Close renders the template and closes the underlying writer if it
// implements io.Closer. Nothing is written when rendering fails.
func (tw *TemplateWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	var buf bytes.Buffer
	if err := tw.tmpl.Execute(&buf, tw.buildTemplateData()); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	if _, err := tw.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	if closer, ok := tw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for start, result and summary events.
func (tw *TemplateWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeStart, events.EventTypeResult, events.EventTypeSummary:
		return true
	default:
		return false
	}
}

// tmplData is the root object passed to templates.
type tmplData struct {
	RunID     string
	Target    string
	Timestamp string
	Duration  float64

	Results   []events.ResultInfo
	Diverging []events.ResultInfo
	Totals    events.SummaryTotal

	FamilyCounts map[string]int
}

func (tw *TemplateWriter) buildTemplateData() *tmplData {
	data := &tmplData{
		RunID:        tw.runID,
		Target:       tw.target,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Results:      sortedResults(tw.results),
		FamilyCounts: make(map[string]int),
	}

	for _, r := range data.Results {
		if r.Diverges {
			data.Diverging = append(data.Diverging, r)
		}
		if r.Family != "" {
			data.FamilyCounts[r.Family]++
		}
	}

	if tw.summary != nil {
		data.Totals = tw.summary.Totals
		data.Duration = tw.summary.Duration
		if data.Target == "" {
			data.Target = tw.summary.Target
		}
	} else {
		data.Totals = totalsOf(data.Results)
	}
	return data
}

// totalsOf counts states when no summary event arrived.
func totalsOf(results []events.ResultInfo) events.SummaryTotal {
	t := events.SummaryTotal{Variants: len(results)}
	for _, r := range results {
		switch r.State {
		case "Ready":
			t.Ready++
		case "Done":
			t.Done++
		case "No Response":
			t.NoResponse++
		case "Error":
			t.Errors++
		}
		if r.Diverges {
			t.Diverging++
		}
	}
	return t
}

func tmplEscapeCSV(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}

func tmplEscapeMarkdown(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ", "\r", "").Replace(s)
}

func tmplStatusText(code int) string {
	if code == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", code)
}

func tmplToJSON(v any) string {
	b, err := jsonutil.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}
