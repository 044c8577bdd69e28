// Package ui renders the human-facing terminal output of waf-charset:
// banner, configuration block, status lines and sweep progress.
// Everything is written to stderr so stdout stays free for results.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/waftester/wafcharset/pkg/defaults"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	out         io.Writer = os.Stderr
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses banner and status lines).
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// SetOutput redirects status output; nil restores stderr.
func SetOutput(w io.Writer) {
	uiMu.Lock()
	defer uiMu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

// Output returns the current status writer.
func Output() io.Writer {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return out
}

const bannerArt = `
                 ___              __                    __
 _    _____ _   / _/ ____ ____ _ / /  ___ _ ____ ___ ___/ /_
| |/|/ / _ '/  / _/ /___// __//  _ \/ _ '// __/(_-</ -_) __/
|__,__/\_,_/  /_/        \__//_//_/\_,_//_/  /___/\__/\__/
`

const bannerSeparator = "________________________________________________"

// PrintBanner prints the application banner with version info.
func PrintBanner() {
	if IsSilent() {
		return
	}
	w := Output()
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "                       v%s\n\n", VersionStyle.Render(defaults.Version))
}

// Option is one labelled line of the configuration block.
type Option struct {
	Name  string
	Value string
}

// PrintConfigBanner prints the run configuration in the given order.
// Options with an empty value are skipped.
//
//	:: Target             : example.com:443 (TLS)
func PrintConfigBanner(options []Option) {
	if IsSilent() {
		return
	}
	w := Output()
	for _, opt := range options {
		if opt.Value == "" {
			continue
		}
		fmt.Fprintf(w, " :: %s : %s\n", ConfigLabelStyle.Render(opt.Name), ConfigValueStyle.Render(opt.Value))
	}
	fmt.Fprintf(w, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintSection prints a section header.
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	w := Output()
	fmt.Fprintln(w)
	fmt.Fprintln(w, SectionStyle.Render("> "+title))
	fmt.Fprintln(w, DividerStyle.Render(strings.Repeat("-", 60)))
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	printStatus(PassStyle, Icon("✔", "[+]"), message)
}

// PrintError prints an error message. Errors are shown even in silent mode.
func PrintError(message string) {
	fmt.Fprintln(Output(), FailStyle.Render("  "+Icon("✘", "[X]")+" "+message))
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	printStatus(WarnStyle, "[!]", message)
}

// PrintInfo prints an info message.
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(Output(), "  %s %s\n", SpinnerStyle.Render("*"), message)
}

func printStatus(style lipgloss.Style, icon, message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(Output(), style.Render("  "+icon+" "+message))
}
