// Package testutil provides reusable test helpers for output writer testing.
//
// Usage:
//
//	lines := testutil.ValidateJSONL(t, buf.Bytes())
//	records := testutil.ValidateCSV(t, buf.Bytes(), ',')
//	testutil.AssertContains(t, buf.Bytes(), []string{"UTF-16LE", "Done"})
package testutil
