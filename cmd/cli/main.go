package main

import (
	"fmt"
	"os"

	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/output/exitcode"
	"github.com/waftester/wafcharset/pkg/ui"
)

// commandUsage is the one-line usage of every subcommand.
var commandUsage = map[string]string{
	"encode":  "waf-charset encode -r request.txt -e IBM037 [-send] [-o out.json -format json]",
	"fuzz":    "waf-charset fuzz -r request.txt [-send [-baseline]] [-format console|json|jsonl|csv|template]",
	"parse":   "waf-charset parse -r request.txt [-format json]",
	"catalog": "waf-charset catalog [-format json]",
}

func printUsage() {
	ui.PrintBanner()
	os.Stderr.Sync() // Sync stderr before switching to stdout

	fmt.Println(ui.SectionStyle.Render("CHARSET FUZZING"))
	fmt.Println()
	fmt.Println("  Re-encodes the body of a raw HTTP request under every charset in the")
	fmt.Println("  catalog, fixes Content-Type and Content-Length, and optionally sends each")
	fmt.Println("  variant to see which encodings the WAF in front of the target lets through.")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("encode "), "Encode the body under one charset and show the rebuilt request")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("fuzz   "), "Build (and send) one variant per catalog encoding")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("parse  "), "Parse & extract host, port and body of a request template")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("catalog"), "List the encodings and Content-Type templates")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("version"), "Print the version")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("EXAMPLES"))
	fmt.Println()
	for _, cmd := range []string{"encode", "fuzz", "parse", "catalog"} {
		fmt.Printf("  %s\n", ui.ConfigValueStyle.Render(commandUsage[cmd]))
	}
	fmt.Printf("  %s\n", ui.ConfigValueStyle.Render("cat request.txt | waf-charset fuzz -send -https"))
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("EXIT CODES"))
	fmt.Println()
	for _, code := range []exitcode.Code{
		exitcode.Success, exitcode.Divergence, exitcode.Configuration,
		exitcode.Target, exitcode.Internal, exitcode.Interrupted,
	} {
		fmt.Printf("  %d  %s\n", code, exitcode.Describe(code))
	}
	fmt.Println()
	fmt.Printf("Run '%s <command> -h' for the flags of a command.\n", defaults.ToolName)
}

func main() {
	// Check for subcommands
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(int(exitcode.Configuration))
	}

	switch os.Args[1] {
	case "encode", "enc":
		runEncode(os.Args[2:])
	case "fuzz":
		runFuzz(os.Args[2:])
	case "parse":
		runParse(os.Args[2:])
	case "catalog", "list":
		runCatalog(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)
	case "-v", "--version", "version":
		fmt.Printf("%s v%s\n", defaults.ToolName, defaults.Version)
		os.Exit(0)
	default:
		exitWithUsage(fmt.Sprintf("unknown command %q", os.Args[1]), "waf-charset encode|fuzz|parse|catalog|version|help")
	}
}
