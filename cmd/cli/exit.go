package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/waftester/wafcharset/pkg/output/exitcode"
	"github.com/waftester/wafcharset/pkg/ui"
)

// exitWithError prints a formatted error message and exits with code.
// Use this instead of ui.PrintError + os.Exit for consistent CLI error handling.
func exitWithError(code exitcode.Code, format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	os.Exit(int(code))
}

// exitWithUsage prints an error message followed by a usage hint, then exits.
func exitWithUsage(msg, usage string) {
	ui.PrintError(msg)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:", usage)
	os.Exit(int(exitcode.Configuration))
}

// exitOnParseError handles a config.Parse failure: -h exits cleanly,
// anything else is a configuration error.
func exitOnParseError(command string, err error) {
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	exitWithUsage(err.Error(), commandUsage[command])
}
