package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/wafcharset/pkg/jsonutil"
)

// ============================================================================
// FORMAT VALIDATORS
// ============================================================================

// ValidateJSON checks content is one JSON object and returns it decoded.
func ValidateJSON(t *testing.T, content []byte) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, jsonutil.Unmarshal(content, &v), "invalid JSON: %s", preview(content))
	return v
}

// ValidateJSONL checks content holds one JSON object per line and returns
// them decoded, in order.
func ValidateJSONL(t *testing.T, content []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for i, line := range bytes.Split(bytes.TrimSpace(content), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var v map[string]any
		require.NoError(t, jsonutil.Unmarshal(line, &v), "line %d is not valid JSON: %s", i+1, line)
		out = append(out, v)
	}
	return out
}

// ValidateCSV parses content with the given delimiter and returns its records.
// Rows may have different field counts (the summary section is shorter).
func ValidateCSV(t *testing.T, content []byte, delimiter rune) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xEF\xBB\xBF"))))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err, "invalid CSV: %s", preview(content))
	return records
}

// ============================================================================
// CONTENT ASSERTIONS
// ============================================================================

// AssertContains checks that every expected string appears in content.
func AssertContains(t *testing.T, content []byte, expected []string) {
	t.Helper()
	for _, s := range expected {
		assert.Contains(t, string(content), s)
	}
}

// AssertNotContains checks that no forbidden string appears in content.
func AssertNotContains(t *testing.T, content []byte, forbidden []string) {
	t.Helper()
	for _, s := range forbidden {
		assert.NotContains(t, string(content), s)
	}
}

// ============================================================================
// TEMP FILES
// ============================================================================

// TempPath returns a path named name inside a per-test temporary directory.
func TempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

// ReadFile reads path or fails the test.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func preview(content []byte) string {
	return string(content[:min(500, len(content))])
}
