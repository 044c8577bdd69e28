// Package output wires a run into the output dispatcher: it converts
// tracked results into events, builds the dispatcher from CLI flags and
// renders the detail views of single variants.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/waftester/wafcharset/pkg/config"
	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/hooks"
	"github.com/waftester/wafcharset/pkg/output/writers"
)

// Config configures the output dispatcher based on CLI flags.
type Config struct {
	// File output; stdout when empty.
	OutputFile string
	Format     string // one of config.Formats

	// Template is a built-in template name or a template file path.
	Template string

	// Console
	Streaming bool
	Silent    bool
	NoColor   bool

	// Hooks
	MetricsPort  int
	OTelEndpoint string
	OTelInsecure bool

	Logger *slog.Logger

	// Stdout receives output when OutputFile is empty (default: os.Stdout).
	Stdout io.Writer
}

// BuildDispatcher creates a dispatcher with the writer for the configured
// format and the configured hooks. A log hook is always registered.
// The caller is responsible for calling Close() on the dispatcher when done;
// it also closes the output file.
func BuildDispatcher(ctx context.Context, cfg Config) (*dispatcher.Dispatcher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := dispatcher.New(dispatcher.Config{Logger: logger})

	var hooksToClose []io.Closer
	cleanup := func() {
		for _, h := range hooksToClose {
			_ = h.Close()
		}
	}

	// === WRITER ===

	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	// Writers close an io.Closer destination; stdout must stay open.
	var out io.Writer = struct{ io.Writer }{stdout}
	var file *os.File
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", cfg.OutputFile, err)
		}
		file, out = f, f
	}

	w, err := newWriter(out, cfg)
	if err != nil {
		closeFile(file)
		return nil, err
	}
	if w != nil {
		if file != nil {
			w = &closingWriter{Writer: w, file: file}
		}
		d.RegisterWriter(w)
	} else {
		closeFile(file)
	}

	// === HOOKS ===

	d.RegisterHook(hooks.NewLogHook(logger))

	// Prometheus metrics
	if cfg.MetricsPort > 0 {
		hook, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{
			Addr:   fmt.Sprintf(":%d", cfg.MetricsPort),
			Logger: logger,
		})
		if err != nil {
			cleanup()
			closeFile(file)
			return nil, fmt.Errorf("failed to create Prometheus hook: %w", err)
		}
		logger.Info("metrics endpoint listening", slog.String("addr", hook.MetricsAddr()))
		hooksToClose = append(hooksToClose, hook)
		d.RegisterHook(hook)
	}

	// OpenTelemetry
	if cfg.OTelEndpoint != "" {
		hook, err := hooks.NewOTelHook(ctx, hooks.OTelOptions{
			Endpoint:    cfg.OTelEndpoint,
			ServiceName: defaults.ToolName,
			Insecure:    cfg.OTelInsecure,
		})
		if err != nil {
			cleanup()
			closeFile(file)
			return nil, fmt.Errorf("failed to create OpenTelemetry hook: %w", err)
		}
		d.RegisterHook(hook)
	}

	return d, nil
}

// newWriter returns the writer for cfg.Format, or nil when a silent
// console run has nothing to print.
func newWriter(out io.Writer, cfg Config) (dispatcher.Writer, error) {
	switch cfg.Format {
	case "", config.FormatConsole:
		if cfg.Silent && cfg.OutputFile == "" {
			return nil, nil
		}
		return writers.NewTableWriter(out, writers.TableConfig{
			Streaming:      cfg.Streaming,
			DisableUnicode: cfg.NoColor || cfg.OutputFile != "",
		}), nil
	case config.FormatJSON:
		return writers.NewJSONWriter(out, writers.JSONOptions{Pretty: true}), nil
	case config.FormatJSONL:
		return writers.NewJSONLWriter(out, writers.JSONLOptions{OnlyFinal: !cfg.Streaming}), nil
	case config.FormatCSV:
		return writers.NewCSVWriter(out, writers.CSVOptions{
			IncludeHeader:    true,
			SanitizeFormulas: true,
			IncludePending:   true,
		}), nil
	case config.FormatTemplate:
		tc := writers.TemplateConfig{TemplatePath: cfg.Template}
		if slices.Contains(writers.BuiltInTemplates(), cfg.Template) {
			tc = writers.TemplateConfig{BuiltIn: cfg.Template}
		}
		w, err := writers.NewTemplateWriter(out, tc)
		if err != nil {
			return nil, fmt.Errorf("template writer: %w", err)
		}
		return w, nil
	}
	return nil, fmt.Errorf("unknown output format %q", cfg.Format)
}

// closingWriter closes the output file after the wrapped writer. Writers
// that already closed it are fine.
type closingWriter struct {
	dispatcher.Writer
	file *os.File
}

func (cw *closingWriter) Close() error {
	err := cw.Writer.Close()
	if cerr := cw.file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

func closeFile(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}
