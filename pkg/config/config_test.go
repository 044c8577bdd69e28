package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/duration"
)

func parse(t *testing.T, command string, args ...string) (*Config, error) {
	t.Helper()
	return Parse(command, args, io.Discard)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestConfigDefaults verifies default values are set correctly
func TestConfigDefaults(t *testing.T) {
	cfg, err := parse(t, "fuzz")
	require.NoError(t, err)

	assert.Equal(t, charset.DefaultContentType, cfg.ContentType)
	assert.Equal(t, duration.SendTimeout, cfg.Timeout)
	assert.Equal(t, FormatConsole, cfg.OutputFormat)
	assert.Zero(t, cfg.RateLimit)
	assert.Zero(t, cfg.Port)
	assert.False(t, cfg.Send)

	opts := cfg.BuildOptions()
	assert.True(t, opts.UpdateContentType)
	assert.True(t, opts.UpdateContentLength)
}

func TestConfigAliases(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*testing.T, *Config)
	}{
		{"request", []string{"-r", "req.txt"}, func(t *testing.T, c *Config) { assert.Equal(t, "req.txt", c.RequestFile) }},
		{"encoding", []string{"-e", "UTF-16LE"}, func(t *testing.T, c *Config) { assert.Equal(t, "UTF-16LE", c.Encoding) }},
		{"content type", []string{"-ct", "application/json; charset={encoding}"}, func(t *testing.T, c *Config) {
			assert.Equal(t, "application/json; charset={encoding}", c.ContentType)
		}},
		{"output", []string{"-o", "out.json", "-format", "json"}, func(t *testing.T, c *Config) {
			assert.Equal(t, "out.json", c.OutputFile)
			assert.Equal(t, FormatJSON, c.OutputFormat)
		}},
		{"proxy", []string{"-x", "socks5://127.0.0.1:1080"}, func(t *testing.T, c *Config) { assert.Equal(t, "socks5://127.0.0.1:1080", c.Proxy) }},
		{"rate limit", []string{"-rl", "5"}, func(t *testing.T, c *Config) { assert.Equal(t, 5, c.RateLimit) }},
		{"no color", []string{"-nc"}, func(t *testing.T, c *Config) { assert.True(t, c.NoColor) }},
		{"positional request", []string{"req.txt"}, func(t *testing.T, c *Config) { assert.Equal(t, "req.txt", c.RequestFile) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(t, "fuzz", tt.args...)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfigUpdateFlags(t *testing.T) {
	cfg, err := parse(t, "fuzz", "-no-update-ct", "-no-update-cl")
	require.NoError(t, err)
	opts := cfg.BuildOptions()
	assert.False(t, opts.UpdateContentType)
	assert.False(t, opts.UpdateContentLength)
}

func TestConfigFile_FlagsOverride(t *testing.T) {
	path := writeFile(t, "wafcharset.yaml", strings.Join([]string{
		"host: waf.example.com",
		"port: 8443",
		"https: true",
		"send: true",
		"timeout: 3s",
		"rate_limit: 2",
		"format: jsonl",
		"content_type: text/plain; charset={encoding}",
	}, "\n"))

	cfg, err := parse(t, "fuzz", "-config", path, "-port", "9443", "-format", "csv")
	require.NoError(t, err)

	assert.Equal(t, "waf.example.com", cfg.Host)
	assert.True(t, cfg.HTTPS)
	assert.True(t, cfg.Send)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.RateLimit)
	assert.Equal(t, "text/plain; charset={encoding}", cfg.ContentType)
	assert.Equal(t, 9443, cfg.Port, "flag overrides file")
	assert.Equal(t, FormatCSV, cfg.OutputFormat, "flag overrides file")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestConfigFile_Errors(t *testing.T) {
	_, err := parse(t, "fuzz", "-config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := writeFile(t, "bad.yaml", "port: [1, 2")
	_, err = parse(t, "fuzz", "-config", bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
		want    error
	}{
		{"encode needs encoding", "encode", nil, ErrMissingRequired},
		{"unknown format", "fuzz", []string{"-format", "sarif"}, ErrInvalidConfig},
		{"template needs file", "fuzz", []string{"-format", "template"}, ErrMissingRequired},
		{"port range", "fuzz", []string{"-port", "70000"}, ErrInvalidConfig},
		{"metrics port range", "fuzz", []string{"-metrics-port", "-1"}, ErrInvalidConfig},
		{"negative rate", "fuzz", []string{"-rate-limit", "-1"}, ErrInvalidConfig},
		{"zero timeout", "fuzz", []string{"-timeout", "0s"}, ErrInvalidConfig},
		{"baseline without send", "fuzz", []string{"-baseline"}, ErrInvalidConfig},
		{"silent and verbose", "fuzz", []string{"-s", "-v"}, ErrInvalidConfig},
		{"unknown flag", "fuzz", []string{"-bogus"}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.command, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigHelp(t *testing.T) {
	_, err := parse(t, "fuzz", "-h")
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestReadRequest(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: a\r\n\r\nbody"

	cfg := Default()
	got, err := cfg.ReadRequest(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	cfg.RequestFile = writeFile(t, "req.txt", raw)
	got, err = cfg.ReadRequest(strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	cfg.RequestFile = "-"
	_, err = cfg.ReadRequest(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingRequired)
}
