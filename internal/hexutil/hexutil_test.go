package hexutil

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

// UTF-16LE body with a NUL after every ASCII byte
var testPayload = []byte("{\x00\"\x00a\x00\"\x00:\x001\x00}\x00")

func TestLookupTablesCorrectness(t *testing.T) {
	for i := 0; i < 256; i++ {
		expected := fmt.Sprintf("%02x", i)
		if Pair[i] != expected {
			t.Errorf("Pair[%d] = %q, expected %q", i, Pair[i], expected)
		}
	}
	for _, b := range []int{0x00, 0x1F, 0x7F, 0x80, 0x9F} {
		if Visible[b] != '.' {
			t.Errorf("Visible[%#x] = %q, expected '.'", b, Visible[b])
		}
	}
	if Visible['A'] != 'A' || Visible[0xE9] != 'é' {
		t.Errorf("printable bytes must map to themselves")
	}
}

func TestEncode(t *testing.T) {
	if got, want := Encode(testPayload), hex.EncodeToString(testPayload); got != want {
		t.Errorf("Encode = %q, expected %q", got, want)
	}
	if Encode(nil) != "" {
		t.Errorf("Encode(nil) should be empty")
	}
}

func TestDump(t *testing.T) {
	data := []byte("POST /api HTTP/1.1\r\n")
	got := Dump(data)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), got)
	}
	want0 := "00000000  50 4f 53 54 20 2f 61 70  69 20 48 54 54 50 2f 31  |POST /api HTTP/1|"
	if lines[0] != want0 {
		t.Errorf("line 0 = %q\nexpected  %q", lines[0], want0)
	}
	if !strings.HasPrefix(lines[1], "00000010  2e 31 0d 0a ") || !strings.HasSuffix(lines[1], "|.1..|") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if len(lines[1]) != len(lines[0])-BytesPerLine+4 {
		t.Errorf("short line must keep the hex column width: %q", lines[1])
	}
	if Dump(nil) != "" {
		t.Errorf("Dump(nil) should be empty")
	}
}

func TestLatin1(t *testing.T) {
	got := Latin1([]byte("a\x00b\r\n\xe9\x85"))
	if got != "a.b\r\né." {
		t.Errorf("Latin1 = %q", got)
	}
}

func BenchmarkEncode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Encode(testPayload)
	}
}

func BenchmarkEncodeStdlib(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = hex.EncodeToString(testPayload)
	}
}

func BenchmarkDump(b *testing.B) {
	data := []byte(strings.Repeat("POST /api HTTP/1.1\r\n", 20))
	for i := 0; i < b.N; i++ {
		_ = Dump(data)
	}
}
