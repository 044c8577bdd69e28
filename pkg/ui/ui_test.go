package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetNoColor(true)
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetSilent(false)
	})
	return &buf
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Response Length", Title("response_length"))
	assert.Equal(t, "Content Type", Title("content_type"))
	assert.Equal(t, "Index", Title("index"))
}

func TestStatusText(t *testing.T) {
	SetNoColor(true)
	assert.Equal(t, "-", StatusText(0))
	assert.Equal(t, "200", StatusText(200))
	assert.Equal(t, "503", StatusText(503))
}

func TestPrintConfigBanner_SkipsEmpty(t *testing.T) {
	buf := captureOutput(t)
	PrintConfigBanner([]Option{
		{Name: "Target", Value: "example.com:443"},
		{Name: "Proxy", Value: ""},
		{Name: "Encodings", Value: "12"},
	})

	text := buf.String()
	assert.Contains(t, text, "example.com:443")
	assert.Contains(t, text, "Encodings")
	assert.NotContains(t, text, "Proxy")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Target")), bytes.Index(buf.Bytes(), []byte("Encodings")))
}

func TestSilent_SuppressesAllButErrors(t *testing.T) {
	buf := captureOutput(t)
	SetSilent(true)

	PrintBanner()
	PrintSection("Results")
	PrintInfo("info")
	PrintSuccess("ok")
	PrintWarning("careful")
	assert.Empty(t, buf.String())

	PrintError("boom")
	assert.Contains(t, buf.String(), "boom")
}

func TestProgress_NotTerminal(t *testing.T) {
	buf := captureOutput(t)

	p := NewProgress(3)
	p.Start()
	p.Increment("Done")
	p.Increment("No Response")
	p.Increment("Error")
	p.Stop()

	assert.Empty(t, buf.String(), "progress draws only on terminals")
	assert.Equal(t, int64(3), p.current.Load())
	assert.Equal(t, int64(1), p.done.Load())
	assert.Equal(t, int64(1), p.noResponse.Load())
	assert.Equal(t, int64(1), p.errored.Load())
}

func TestProgress_Line(t *testing.T) {
	SetNoColor(true)
	p := NewProgress(12)
	p.Increment("Done")
	p.Increment("Sent")

	line := p.line("*")
	require.Contains(t, line, "2/12")
	assert.Contains(t, line, "done 1")
	assert.Contains(t, line, "error 0")
	assert.Contains(t, line, "00:00")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:05", formatDuration(5*time.Second))
	assert.Equal(t, "02:03", formatDuration(123*time.Second))
	assert.Equal(t, "01:00:00", formatDuration(time.Hour))
}

func TestStripWide(t *testing.T) {
	assert.Equal(t, "[+] café ok", stripWide("[+] café ok"))
	assert.Equal(t, " done", stripWide("✔ done"))
}
