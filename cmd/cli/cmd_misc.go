package main

import (
	"fmt"
	"io"
	"os"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/config"
	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/jsonutil"
	"github.com/waftester/wafcharset/pkg/output/exitcode"
	"github.com/waftester/wafcharset/pkg/rawhttp"
	"github.com/waftester/wafcharset/pkg/ui"
)

// parsedRequest is the JSON shape of the parse command.
type parsedRequest struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	PortExplicit  bool   `json:"port_explicit"`
	ContentType   string `json:"content_type,omitempty"`
	ContentLength string `json:"content_length,omitempty"`
	HasBody       bool   `json:"has_body"`
	BodyLength    int    `json:"body_length"`
	Body          string `json:"body"`
}

func newParsedRequest(tpl *rawhttp.Template, useTLS bool) parsedRequest {
	p := parsedRequest{
		Host:         tpl.Host,
		Port:         tpl.Port,
		PortExplicit: tpl.HasPort,
		HasBody:      tpl.HasBody,
		BodyLength:   len(tpl.Body),
		Body:         tpl.Body,
	}
	if !tpl.HasPort {
		p.Port = defaults.PortFor(useTLS)
	}
	p.ContentType, _ = rawhttp.HeaderValue(tpl.HeaderBlock, "Content-Type")
	p.ContentLength, _ = rawhttp.HeaderValue(tpl.HeaderBlock, "Content-Length")
	return p
}

// runParse shows what the tool extracts from a request template.
func runParse(args []string) {
	cfg, err := config.Parse("parse", args, os.Stderr)
	if err != nil {
		exitOnParseError("parse", err)
	}
	ui.SetNoColor(cfg.NoColor)
	ui.SetSilent(cfg.Silent)

	raw, err := cfg.ReadRequest(os.Stdin)
	if err != nil {
		exitWithError(exitcode.Configuration, "%v", err)
	}
	tpl, err := rawhttp.ParseTemplate(raw)
	if err != nil {
		exitWithError(exitcode.Configuration, "Invalid request: %v", err)
	}

	if err := writeParsed(os.Stdout, newParsedRequest(tpl, cfg.HTTPS), cfg.OutputFormat); err != nil {
		exitWithError(exitcode.Internal, "%v", err)
	}
}

// writeParsed prints p as JSON for -format json, as text otherwise.
func writeParsed(w io.Writer, p parsedRequest, format string) error {
	if format == config.FormatJSON {
		enc := jsonutil.NewStreamEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	ui.PrintSection("Parse & Extract")
	port := fmt.Sprintf("%d", p.Port)
	if !p.PortExplicit {
		port += " (default)"
	}
	ui.PrintConfigBanner([]ui.Option{
		{Name: "Host          ", Value: orDash(p.Host)},
		{Name: "Port          ", Value: port},
		{Name: "Content-Type  ", Value: p.ContentType},
		{Name: "Content-Length", Value: p.ContentLength},
		{Name: "Body          ", Value: fmt.Sprintf("%d bytes", p.BodyLength)},
	})
	if !p.HasBody {
		ui.PrintWarning("No empty line found: the request has no body")
		return nil
	}
	_, err := fmt.Fprintln(w, p.Body)
	return err
}

// catalogEntry is one row of the catalog command.
type catalogEntry struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Family       string `json:"family"`
	CharsetToken string `json:"charset_token"`
}

type catalogListing struct {
	Encodings    []catalogEntry `json:"encodings"`
	ContentTypes []string       `json:"content_types"`
	Default      string         `json:"default_content_type"`
}

func newCatalogListing() catalogListing {
	specs := charset.Catalog()
	l := catalogListing{
		Encodings:    make([]catalogEntry, len(specs)),
		ContentTypes: charset.ContentTypes(),
		Default:      charset.DefaultContentType,
	}
	for i, spec := range specs {
		l.Encodings[i] = catalogEntry{
			Index:        i + 1,
			Name:         spec.Name,
			Family:       string(spec.Family),
			CharsetToken: spec.CharsetToken,
		}
	}
	return l
}

// runCatalog lists the encodings in catalog order and the Content-Type
// templates.
func runCatalog(args []string) {
	cfg, err := config.Parse("catalog", args, os.Stderr)
	if err != nil {
		exitOnParseError("catalog", err)
	}
	ui.SetNoColor(cfg.NoColor)
	ui.SetSilent(cfg.Silent)

	if err := writeCatalog(os.Stdout, newCatalogListing(), cfg.OutputFormat); err != nil {
		exitWithError(exitcode.Internal, "%v", err)
	}
}

// writeCatalog prints l as JSON for -format json, as text otherwise.
func writeCatalog(w io.Writer, l catalogListing, format string) error {
	if format == config.FormatJSON {
		enc := jsonutil.NewStreamEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}

	fmt.Fprintln(w, ui.SectionStyle.Render("ENCODINGS"))
	for _, e := range l.Encodings {
		fmt.Fprintf(w, "  %2d  %s  %-8s  %s\n",
			e.Index,
			ui.FamilyStyle(e.Family).Render(fmt.Sprintf("%-13s", e.Name)),
			e.Family,
			e.CharsetToken,
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.SectionStyle.Render("CONTENT-TYPE TEMPLATES"))
	for _, ct := range l.ContentTypes {
		marker := " "
		if ct == l.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, ct)
	}
	_, err := fmt.Fprintf(w, "\n  %s is replaced by the charset token; * marks the default.\n", charset.EncodingPlaceholder)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
