//go:build !windows

package writers

import "io"

// unicodeSupported reports whether box-drawing characters are safe for w.
// Unix terminals and pipes carry UTF-8 unchanged.
func unicodeSupported(_ io.Writer) bool {
	return true
}
