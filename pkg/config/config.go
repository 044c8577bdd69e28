// Package config parses waf-charset command lines.
//
// Every subcommand shares one flag layout with long and short aliases. A
// YAML file passed with -config supplies values first; flags given
// explicitly on the command line override it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/defaults"
	"github.com/waftester/wafcharset/pkg/duration"
	"github.com/waftester/wafcharset/pkg/rawhttp"
)

// Output formats accepted by -format.
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatJSONL    = "jsonl"
	FormatCSV      = "csv"
	FormatTemplate = "template"
)

// Formats lists every accepted -format value.
var Formats = []string{FormatConsole, FormatJSON, FormatJSONL, FormatCSV, FormatTemplate}

// Config holds all CLI configuration options
type Config struct {
	// Input settings
	RequestFile string `yaml:"request"`  // Raw request file; empty or "-" reads stdin
	Encoding    string `yaml:"encoding"` // Single encoding for the encode command
	ContentType string `yaml:"content_type"`

	// Header rewriting (both on by default)
	NoUpdateContentType   bool `yaml:"no_update_content_type"`
	NoUpdateContentLength bool `yaml:"no_update_content_length"`

	// Target settings (derived from the Host header when empty)
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	HTTPS bool   `yaml:"https"`

	// Execution settings
	Send      bool          `yaml:"send"`
	Baseline  bool          `yaml:"baseline"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"`

	// Network settings
	Proxy string `yaml:"proxy"`
	JA3   string `yaml:"ja3"`

	// Output settings
	OutputFile   string `yaml:"output"`
	OutputFormat string `yaml:"format"`
	TemplateFile string `yaml:"template"`
	Verbose      bool   `yaml:"verbose"`
	Silent       bool   `yaml:"silent"`
	NoColor      bool   `yaml:"no_color"`

	// Observability
	MetricsPort  int    `yaml:"metrics_port"`
	OTelEndpoint string `yaml:"otel_endpoint"`

	ConfigFile string `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ContentType:  charset.DefaultContentType,
		Timeout:      duration.SendTimeout,
		RateLimit:    defaults.RateLimitNone,
		JA3:          defaults.JA3None,
		OutputFormat: FormatConsole,
	}
}

// Register binds every flag to cfg on fs. Current field values become the
// flag defaults.
func (cfg *Config) Register(fs *flag.FlagSet) {
	// === INPUT ===
	fs.StringVar(&cfg.RequestFile, "request", cfg.RequestFile, "Raw HTTP request file (default: stdin)")
	fs.StringVar(&cfg.RequestFile, "r", cfg.RequestFile, "Request file (alias)")
	fs.StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "Encoding for the encode command (e.g., UTF-16LE, IBM037)")
	fs.StringVar(&cfg.Encoding, "e", cfg.Encoding, "Encoding (alias)")
	fs.StringVar(&cfg.ContentType, "content-type", cfg.ContentType, "Content-Type template; {encoding} is replaced by the charset token")
	fs.StringVar(&cfg.ContentType, "ct", cfg.ContentType, "Content-Type template (alias)")
	fs.BoolVar(&cfg.NoUpdateContentType, "no-update-ct", cfg.NoUpdateContentType, "Keep the template's Content-Type header")
	fs.BoolVar(&cfg.NoUpdateContentLength, "no-update-cl", cfg.NoUpdateContentLength, "Keep the template's Content-Length header")

	// === TARGET ===
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Target host (default: Host header)")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Target port (default: Host header port, else 80/443)")
	fs.BoolVar(&cfg.HTTPS, "https", cfg.HTTPS, "Use TLS")

	// === EXECUTION ===
	fs.BoolVar(&cfg.Send, "send", cfg.Send, "Send the generated requests to the target")
	fs.BoolVar(&cfg.Baseline, "baseline", cfg.Baseline, "Send the unmodified request first and flag diverging variants")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout for one send")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Max sends per second on top of the fixed delay (0 = off)")
	fs.IntVar(&cfg.RateLimit, "rl", cfg.RateLimit, "Rate limit (alias)")

	// === NETWORK ===
	fs.StringVar(&cfg.Proxy, "proxy", cfg.Proxy, "HTTP or SOCKS5 proxy URL")
	fs.StringVar(&cfg.Proxy, "x", cfg.Proxy, "Proxy (alias)")
	fs.StringVar(&cfg.JA3, "ja3", cfg.JA3, "TLS ClientHello profile (e.g., chrome, firefox)")

	// === OUTPUT ===
	fs.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Output file path")
	fs.StringVar(&cfg.OutputFile, "o", cfg.OutputFile, "Output file (alias)")
	fs.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Output format: "+strings.Join(Formats, ","))
	fs.StringVar(&cfg.TemplateFile, "template", cfg.TemplateFile, "Template name or file for -format template")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose (alias)")
	fs.BoolVar(&cfg.Silent, "silent", cfg.Silent, "Silent mode - no banner or progress")
	fs.BoolVar(&cfg.Silent, "s", cfg.Silent, "Silent (alias)")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")
	fs.BoolVar(&cfg.NoColor, "nc", cfg.NoColor, "No color (alias)")

	// === OBSERVABILITY ===
	fs.IntVar(&cfg.MetricsPort, "metrics-port", cfg.MetricsPort, "Serve Prometheus metrics on this port (0 = off)")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP gRPC endpoint for traces")

	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file; explicit flags override it")
}

// Parse parses args for command. Usage and flag errors go to output.
func Parse(command string, args []string, output io.Writer) (*Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(output)
	cfg.Register(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.ConfigFile != "" {
		path := cfg.ConfigFile
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
		// Re-apply the command line so explicit flags win over the file.
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		cfg.ConfigFile = path
	}

	if fs.NArg() > 0 && cfg.RequestFile == "" {
		cfg.RequestFile = fs.Arg(0)
	}
	if err := cfg.Validate(command); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into cfg. Keys absent from the
// file keep their current values.
func (cfg *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return cfg.parseYAML(data)
}

func (cfg *Config) parseYAML(data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the fields command depends on.
func (cfg *Config) Validate(command string) error {
	if command == "encode" && cfg.Encoding == "" {
		return fmt.Errorf("%w: -e (encoding) is required for encode", ErrMissingRequired)
	}
	if !slices.Contains(Formats, cfg.OutputFormat) {
		return fmt.Errorf("%w: unknown format %q (want one of %s)", ErrInvalidConfig, cfg.OutputFormat, strings.Join(Formats, ", "))
	}
	if cfg.OutputFormat == FormatTemplate && cfg.TemplateFile == "" {
		return fmt.Errorf("%w: -template is required with -format template", ErrMissingRequired)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics port %d out of range", ErrInvalidConfig, cfg.MetricsPort)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if cfg.Baseline && !cfg.Send {
		return fmt.Errorf("%w: -baseline needs -send", ErrInvalidConfig)
	}
	if cfg.Silent && cfg.Verbose {
		return fmt.Errorf("%w: -silent and -verbose are mutually exclusive", ErrInvalidConfig)
	}
	return nil
}

// BuildOptions returns which entity headers are rewritten.
func (cfg *Config) BuildOptions() rawhttp.BuildOptions {
	return rawhttp.BuildOptions{
		UpdateContentType:   !cfg.NoUpdateContentType,
		UpdateContentLength: !cfg.NoUpdateContentLength,
	}
}

// ReadRequest reads the raw request from RequestFile, or from stdin when
// it is empty or "-".
func (cfg *Config) ReadRequest(stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if cfg.RequestFile == "" || cfg.RequestFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(cfg.RequestFile)
	}
	if err != nil {
		return "", fmt.Errorf("reading request: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty request (use -r or pipe one on stdin)", ErrMissingRequired)
	}
	return string(data), nil
}
