package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/config"
	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/output"
	"github.com/waftester/wafcharset/pkg/output/exitcode"
	"github.com/waftester/wafcharset/pkg/ui"
)

// runEncode builds a single variant under -e, prints it and optionally
// sends it.
func runEncode(args []string) {
	r := newRunner("encode", args)
	r.printConfig()

	gen := fuzz.New(r.fuzzConfig(r.session.Failure))
	v, err := gen.BuildOne(r.tpl.Raw, r.tpl.Body, r.cfg.Encoding)
	if err != nil {
		spec, ok := charset.LookupSpec(r.cfg.Encoding)
		if !ok {
			spec = charset.EncodingSpec{Name: r.cfg.Encoding}
		}
		r.session.Failure(v.Index, spec, err)
		_ = r.session.Start(uuid.NewString(), 0, r.runConfig())
		r.fail(exitcode.Configuration, "Encoding failed: %v", err)
		return
	}

	if err := r.owner.Reset(); err != nil {
		r.fail(exitcode.Internal, "%v", err)
		return
	}
	if err := r.owner.Ready(v); err != nil {
		r.fail(exitcode.Internal, "%v", err)
		return
	}
	_ = r.owner.Sync()
	if err := r.session.Start(uuid.NewString(), 1, r.runConfig()); err != nil {
		r.logger.Warn("start event failed", slog.String("error", err.Error()))
	}

	human := printsToStdout(r.cfg)
	if human {
		fmt.Print(output.EncodedRequest(v))
	}

	if r.cfg.Send {
		s, err := r.newSender()
		if err != nil {
			r.fail(exitcode.Configuration, "Transport setup failed: %v", err)
			return
		}
		if r.cfg.Baseline {
			r.sendBaseline(s)
		}
		res := s.SendOne(r.ctx, v)
		_ = r.owner.Sync()
		if human {
			fmt.Println()
			fmt.Print(output.Detail(res))
		}
		ui.PrintInfo(fmt.Sprintf("%s: %s %s", res.Variant.Spec.Name, res.State, res.StatusText()))
	}

	r.finish()
}

// printsToStdout reports whether human-readable detail views may go to
// stdout: machine formats own it unless they are written to a file.
func printsToStdout(cfg *config.Config) bool {
	return cfg.OutputFormat == config.FormatConsole || cfg.OutputFile != ""
}
