package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/fuzz"
	"github.com/waftester/wafcharset/pkg/output/exitcode"
	"github.com/waftester/wafcharset/pkg/ui"
)

// runFuzz builds one variant per catalog encoding and, with -send, sends
// them in catalog order.
func runFuzz(args []string) {
	r := newRunner("fuzz", args)
	r.printConfig(ui.Option{Name: "Catalog    ", Value: fmt.Sprintf("%d encodings", len(charset.Catalog()))})

	gen := fuzz.New(r.fuzzConfig(r.session.Failure))
	run, err := gen.Run(r.ctx, r.tpl.Raw, r.tpl.Body, r.owner)
	if startErr := r.session.Start(run.ID, len(run.Variants), r.runConfig()); startErr != nil {
		r.logger.Warn("start event failed", slog.String("error", startErr.Error()))
	}
	switch {
	case errors.Is(err, fuzz.ErrEmptyBody):
		r.fail(exitcode.Configuration, "The request has no body to encode")
		return
	case err != nil && r.ctx.Err() != nil:
		r.finish()
		return
	case err != nil:
		r.fail(exitcode.Internal, "Generation failed: %v", err)
		return
	}

	failed := r.session.Failed()
	ui.PrintSuccess(fmt.Sprintf("Generated %d variants", len(run.Variants)))
	if failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d encodings could not represent the body", failed))
	}

	if r.cfg.Send && len(run.Variants) > 0 {
		s, err := r.newSender()
		if err != nil {
			r.fail(exitcode.Configuration, "Transport setup failed: %v", err)
			return
		}
		ui.PrintSection("Sending")
		r.sendAll(s, run.Variants)

		sum := r.owner.Summary()
		ui.PrintInfo(fmt.Sprintf("Done %d, no response %d, errors %d, diverging %d",
			sum.Done, sum.NoResponse, sum.Error, sum.Diverging))
	}

	r.finish()
}
