package charset

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Compile-time interface check.
var _ encoding.Encoding = (*singleByte)(nil)

// singleByte is an 8-bit code page described by a full decode table.
// It plugs into the x/text encoding machinery so the engine treats it
// exactly like the charmap code pages.
type singleByte struct {
	name   string
	decode *[256]rune
	encode map[rune]byte
}

func newSingleByte(name string, table *[256]rune) *singleByte {
	enc := make(map[rune]byte, len(table))
	for b, r := range table {
		enc[r] = byte(b)
	}
	return &singleByte{name: name, decode: table, encode: enc}
}

var (
	// IBM500 is EBCDIC code page 500 (International Latin-1).
	IBM500 encoding.Encoding = newSingleByte("IBM500", &ibm500Table)

	// IBM1026 is EBCDIC code page 1026 (Turkish Latin-5).
	IBM1026 encoding.Encoding = newSingleByte("IBM1026", &ibm1026Table)
)

func (c *singleByte) String() string { return c.name }

func (c *singleByte) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: singleByteDecoder{page: c}}
}

func (c *singleByte) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: singleByteEncoder{page: c}}
}

type singleByteDecoder struct {
	transform.NopResetter
	page *singleByte
}

func (d singleByteDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r := d.page.decode[src[nSrc]]
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc++
	}
	return nDst, nSrc, nil
}

type singleByteEncoder struct {
	transform.NopResetter
	page *singleByte
}

func (e singleByteEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		r, size := rune(src[nSrc]), 1
		if r >= utf8.RuneSelf {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			r, size = utf8.DecodeRune(src[nSrc:])
			if r == utf8.RuneError && size == 1 {
				return nDst, nSrc, errInvalidUTF8
			}
		}

		b, ok := e.page.encode[r]
		if !ok {
			return nDst, nSrc, &unsupportedRuneError{charset: e.page.name, r: r}
		}
		dst[nDst] = b
		nDst++
		nSrc += size
	}
	return nDst, nSrc, nil
}
