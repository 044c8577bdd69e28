// Package hexutil renders raw request and response bytes for display.
// Uses lookup tables instead of fmt.Sprintf on the per-byte path.
package hexutil

import "strings"

// Hex character tables
const (
	HexUpper = "0123456789ABCDEF"
	HexLower = "0123456789abcdef"
)

// BytesPerLine is the width of one Dump line.
const BytesPerLine = 16

// Pre-computed lookup tables
var (
	// Pair contains the two lowercase hex digits for each byte value
	Pair [256]string

	// Visible maps each byte to itself when printable as Latin-1, else '.'
	Visible [256]rune
)

func init() {
	for i := 0; i < 256; i++ {
		Pair[i] = string([]byte{HexLower[i>>4], HexLower[i&0x0F]})
		switch {
		case i < 0x20, i == 0x7F, i >= 0x80 && i < 0xA0:
			Visible[i] = '.'
		default:
			Visible[i] = rune(i)
		}
	}
}

// Encode returns data as contiguous lowercase hex.
func Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 2)
	for _, b := range data {
		sb.WriteString(Pair[b])
	}
	return sb.String()
}

// Dump renders data as offset, hex and Latin-1 columns:
//
//	00000000  50 4f 53 54 20 2f 61 70  69 20 48 54 54 50 2f 31  |POST /api HTTP/1|
func Dump(data []byte) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += BytesPerLine {
		line := data[off:min(off+BytesPerLine, len(data))]
		writeOffset(&sb, off)
		sb.WriteString("  ")
		for i := 0; i < BytesPerLine; i++ {
			if i == BytesPerLine/2 {
				sb.WriteByte(' ')
			}
			if i < len(line) {
				sb.WriteString(Pair[line[i]])
			} else {
				sb.WriteString("  ")
			}
			sb.WriteByte(' ')
		}
		sb.WriteString(" |")
		for _, b := range line {
			sb.WriteRune(Visible[b])
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}

// Latin1 decodes data one byte per rune, keeping CR, LF and tab and
// replacing other control bytes with '.'.
func Latin1(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		switch b {
		case '\r', '\n', '\t':
			sb.WriteByte(b)
		default:
			sb.WriteRune(Visible[b])
		}
	}
	return sb.String()
}

// writeOffset writes n as 8 lowercase hex digits
func writeOffset(sb *strings.Builder, n int) {
	for shift := 28; shift >= 0; shift -= 4 {
		sb.WriteByte(HexLower[(n>>shift)&0xF])
	}
}
