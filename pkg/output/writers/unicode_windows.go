//go:build windows

package writers

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// unicodeSupported reports whether box-drawing characters are safe for w.
// Piped console output is re-encoded by PowerShell with the OEM codepage,
// and a console whose output codepage is not UTF-8 mangles them too.
func unicodeSupported(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	if !term.IsTerminal(int(f.Fd())) {
		return false
	}
	const cpUTF8 = 65001
	cp, err := windows.GetConsoleOutputCP()
	return err == nil && cp == cpUTF8
}
