package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/waftester/wafcharset/pkg/config"
	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/output"
	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
	"github.com/waftester/wafcharset/pkg/output/exitcode"
	"github.com/waftester/wafcharset/pkg/rawhttp"
	"github.com/waftester/wafcharset/pkg/results"
	"github.com/waftester/wafcharset/pkg/sender"
	"github.com/waftester/wafcharset/pkg/transport"
	"github.com/waftester/wafcharset/pkg/ui"
)

// runner holds everything one encode or fuzz invocation shares: parsed
// flags, the request template, the result store and the output pipeline.
type runner struct {
	command string
	cfg     *config.Config
	logger  *slog.Logger
	tpl     *rawhttp.Template
	target  sender.Target

	ctx    context.Context
	cancel context.CancelFunc

	owner   *results.Owner
	disp    *dispatcher.Dispatcher
	session *output.Session
	exit    *exitcode.Manager
}

// newRunner parses args, reads the request and builds the output
// pipeline. It exits the process on any setup error.
func newRunner(command string, args []string) *runner {
	cfg, err := config.Parse(command, args, os.Stderr)
	if err != nil {
		exitOnParseError(command, err)
	}

	ui.SetNoColor(cfg.NoColor)
	ui.SetSilent(cfg.Silent)
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	raw, err := cfg.ReadRequest(os.Stdin)
	if err != nil {
		exitWithError(exitcode.Configuration, "%v", err)
	}
	tpl, err := rawhttp.ParseTemplate(raw)
	if err != nil {
		exitWithError(exitcode.Configuration, "Invalid request: %v", err)
	}

	r := &runner{command: command, cfg: cfg, logger: logger, tpl: tpl}
	if cfg.Send {
		r.target, err = resolveTarget(cfg, tpl)
		if err != nil {
			exitWithError(exitcode.Configuration, "%v", err)
		}
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.exit = exitcode.New(exitcode.DefaultConfig())

	r.disp, err = output.BuildDispatcher(r.ctx, output.Config{
		OutputFile:   cfg.OutputFile,
		Format:       cfg.OutputFormat,
		Template:     cfg.TemplateFile,
		Streaming:    cfg.Send,
		Silent:       cfg.Silent,
		NoColor:      cfg.NoColor,
		MetricsPort:  cfg.MetricsPort,
		OTelEndpoint: cfg.OTelEndpoint,
		OTelInsecure: true,
		Logger:       logger,
	})
	if err != nil {
		r.cancel()
		exitWithError(exitcode.Configuration, "Output setup failed: %v", err)
	}
	r.disp.RegisterHook(r.exit)

	r.owner = results.NewOwner(results.WithLogger(logger))
	r.session = output.NewSession(r.ctx, r.disp, r.targetLabel(), command)
	r.owner.Subscribe(r.session.Observe)

	// Handle Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			ui.PrintWarning("Interrupted, stopping...")
			r.exit.SetInterrupted()
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	return r
}

// newLogger writes text logs to w: warnings by default, everything with
// -verbose, errors only with -silent.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case cfg.Verbose:
		level = slog.LevelDebug
	case cfg.Silent:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (r *runner) fuzzConfig(onFailure fuzz.FailureFunc) fuzz.Config {
	return fuzz.Config{
		ContentTypeTemplate: r.cfg.ContentType,
		Build:               r.cfg.BuildOptions(),
		OnFailure:           onFailure,
		Logger:              r.logger,
	}
}

// runConfig is the configuration block of the start event.
func (r *runner) runConfig() events.RunConfig {
	rc := events.RunConfig{
		ContentType:         r.cfg.ContentType,
		UpdateContentType:   !r.cfg.NoUpdateContentType,
		UpdateContentLength: !r.cfg.NoUpdateContentLength,
		Send:                r.cfg.Send,
		Baseline:            r.cfg.Baseline,
		TLS:                 r.target.UseTLS,
		JA3Profile:          r.cfg.JA3,
	}
	if r.cfg.Encoding != "" {
		rc.Encodings = []string{r.cfg.Encoding}
	}
	if r.cfg.Proxy != "" {
		rc.Proxy = redactProxy(r.cfg.Proxy)
	}
	return rc
}

func (r *runner) targetLabel() string {
	if !r.cfg.Send {
		return ""
	}
	return r.target.String()
}

// printConfig prints the banner and the configuration block.
func (r *runner) printConfig(extra ...ui.Option) {
	ui.PrintBanner()
	opts := []ui.Option{
		{Name: "Command    ", Value: r.command},
		{Name: "Request    ", Value: fmt.Sprintf("%d bytes, body %d bytes", len(r.tpl.Raw), len(r.tpl.Body))},
		{Name: "Encoding   ", Value: r.cfg.Encoding},
		{Name: "Content    ", Value: r.cfg.ContentType},
		{Name: "Update CT  ", Value: strconv.FormatBool(!r.cfg.NoUpdateContentType)},
		{Name: "Update CL  ", Value: strconv.FormatBool(!r.cfg.NoUpdateContentLength)},
	}
	if r.cfg.Send {
		opts = append(opts,
			ui.Option{Name: "Target     ", Value: r.target.Describe()},
			ui.Option{Name: "Timeout    ", Value: r.cfg.Timeout.String()},
			ui.Option{Name: "Proxy      ", Value: redactProxy(r.cfg.Proxy)},
			ui.Option{Name: "JA3        ", Value: r.cfg.JA3},
		)
		if r.cfg.RateLimit > defaults.RateLimitNone {
			opts = append(opts, ui.Option{Name: "Rate Limit ", Value: fmt.Sprintf("%d/s", r.cfg.RateLimit)})
		}
	}
	if r.cfg.OutputFile != "" {
		opts = append(opts, ui.Option{Name: "Output     ", Value: r.cfg.OutputFile + " (" + r.cfg.OutputFormat + ")"})
	}
	ui.PrintConfigBanner(append(opts, extra...))
}

// newSender builds the raw transport and a sender posting into the store.
func (r *runner) newSender() (*sender.Sender, error) {
	tcfg := transport.DefaultConfig()
	tcfg.Proxy = r.cfg.Proxy
	tcfg.JA3Profile = r.cfg.JA3
	tcfg.Logger = r.logger
	raw, err := transport.NewRaw(tcfg)
	if err != nil {
		return nil, err
	}
	return sender.New(sender.Config{
		Target:    r.target,
		Transport: raw,
		Sink:      r.owner,
		RateLimit: r.cfg.RateLimit,
		Timeout:   r.cfg.Timeout,
		Logger:    r.logger,
	}), nil
}

// sendBaseline sends the unmodified request so later results can be
// flagged as diverging.
func (r *runner) sendBaseline(s *sender.Sender) {
	b := s.Baseline(r.ctx, r.tpl.Bytes())
	if b.State == results.StateDone {
		ui.PrintInfo(fmt.Sprintf("Baseline: %s, %d bytes, %d ms", b.StatusText(), b.ResponseLength, b.ElapsedMS()))
		return
	}
	ui.PrintWarning(fmt.Sprintf("Baseline %s: %s; divergence is not tracked", b.State, b.Error))
}

// sendAll sends variants one by one with a progress line, after the
// baseline when requested.
func (r *runner) sendAll(s *sender.Sender, variants []fuzz.Variant) []results.Result {
	if r.cfg.Baseline {
		r.sendBaseline(s)
	}

	progress := ui.NewProgress(len(variants))
	r.owner.Subscribe(func(u results.Update) {
		if u.Kind == results.UpdateUpsert && u.Result.State.Terminal() {
			progress.Increment(u.Result.State.String())
		}
	})
	progress.Start()
	out := s.SendAll(r.ctx, variants)
	_ = r.owner.Sync()
	progress.Stop()
	return out
}

// finish emits the summary, closes the output pipeline and exits with the
// code the run earned.
func (r *runner) finish() {
	if err := r.owner.Sync(); err != nil {
		r.logger.Warn("results sync failed", slog.String("error", err.Error()))
	}
	sum := r.owner.Summary()
	if err := r.session.Finish(sum); err != nil {
		r.exit.SetInternalError()
	}
	r.owner.Close()
	if err := r.disp.Close(); err != nil {
		ui.PrintWarning(fmt.Sprintf("Closing output: %v", err))
	}
	r.cancel()

	if r.cfg.OutputFile != "" {
		ui.PrintSuccess(fmt.Sprintf("Results written to %s", r.cfg.OutputFile))
	}
	code, reason := r.exit.ExitCode()
	if code != exitcode.Success {
		ui.PrintWarning(reason)
	}
	r.logger.Debug("exiting",
		slog.Int("code", int(code)),
		slog.String("status", exitcode.CodeString(code)),
	)
	os.Exit(int(code))
}

// fail records a failure of class code, then finishes the run.
func (r *runner) fail(code exitcode.Code, format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	switch code {
	case exitcode.Configuration:
		r.exit.SetConfigError()
	default:
		r.exit.SetInternalError()
	}
	r.finish()
}
