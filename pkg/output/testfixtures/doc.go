// Package testfixtures provides shared event streams for output writer and
// hook tests.
//
// Every fixture uses the same run ID and target so writers and hooks can be
// checked against one canonical run.
//
// Usage:
//
//	for _, e := range testfixtures.Sweep() {
//		_ = w.Write(e)
//	}
//
// Fixture Generators:
//
//	Start    - the start event of a fuzz run
//	Result   - one state transition of one variant
//	Failure  - an encoding that could not be generated
//	Summary  - the end-of-run counts
//	Sweep    - a complete three-variant run
package testfixtures
