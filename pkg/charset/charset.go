// Package charset re-encodes text under the charsets used for WAF evasion
// testing and resolves the charset labels written into Content-Type headers.
//
// Names are resolved through a closed registry of normalized aliases
// (IBM037/CP037, UTF16LE, LATIN1, ...). Names the registry does not know fall
// through to a generic codec lookup by the literal name (IANA, then WHATWG);
// when both miss, the operation fails with an *EncodingError.
package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Codec pairs a byte codec with the token used in Content-Type headers.
type Codec struct {
	Token    string
	Encoding encoding.Encoding
}

// LookupFunc resolves a codec by the literal charset name the caller passed.
type LookupFunc func(name string) (encoding.Encoding, error)

// The unmarked UTF-16 and UTF-32 forms carry a byte-order mark and use
// little-endian code units after it. The explicit BE/LE forms never emit a mark.
var builtin = map[string]Codec{
	"IBM037":      {Token: "ibm037", Encoding: charmap.CodePage037},
	"CP037":       {Token: "ibm037", Encoding: charmap.CodePage037},
	"IBM500":      {Token: "ibm500", Encoding: IBM500},
	"CP500":       {Token: "ibm500", Encoding: IBM500},
	"IBM1026":     {Token: "ibm1026", Encoding: IBM1026},
	"CP1026":      {Token: "ibm1026", Encoding: IBM1026},
	"UTF16":       {Token: "utf-16", Encoding: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	"UTF16BE":     {Token: "utf-16be", Encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	"UTF16LE":     {Token: "utf-16le", Encoding: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	"UTF32":       {Token: "utf-32", Encoding: utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)},
	"UTF32BE":     {Token: "utf-32be", Encoding: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)},
	"UTF32LE":     {Token: "utf-32le", Encoding: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)},
	"ISO88591":    {Token: "iso-8859-1", Encoding: charmap.ISO8859_1},
	"LATIN1":      {Token: "iso-8859-1", Encoding: charmap.ISO8859_1},
	"ISO885915":   {Token: "iso-8859-15", Encoding: charmap.ISO8859_15},
	"LATIN9":      {Token: "iso-8859-15", Encoding: charmap.ISO8859_15},
	"WINDOWS1252": {Token: "windows-1252", Encoding: charmap.Windows1252},
	"CP1252":      {Token: "windows-1252", Encoding: charmap.Windows1252},
}

var nameReplacer = strings.NewReplacer("-", "", "_", "", " ", "")

// Normalize strips separators and uppercases a charset name so that
// "utf-16le", "UTF_16LE" and "utf16le" resolve to the same registry key.
func Normalize(name string) string {
	return strings.ToUpper(nameReplacer.Replace(strings.TrimSpace(name)))
}

// Engine encodes and decodes text by charset name.
// An Engine holds no mutable state after construction and is safe for
// concurrent use.
type Engine struct {
	codecs   map[string]Codec
	fallback LookupFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithCodec registers or replaces the codec for name (any spelling).
// The token keeps the registry value when name overrides a builtin.
func WithCodec(name string, enc encoding.Encoding) Option {
	return func(e *Engine) {
		key := Normalize(name)
		c, ok := e.codecs[key]
		if !ok {
			c.Token = strings.ToLower(strings.TrimSpace(name))
		}
		c.Encoding = enc
		e.codecs[key] = c
	}
}

// WithFallback replaces the generic codec lookup used for unregistered names.
func WithFallback(fn LookupFunc) Option {
	return func(e *Engine) { e.fallback = fn }
}

// NewEngine creates an engine backed by the builtin registry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		codecs:   make(map[string]Codec, len(builtin)),
		fallback: GenericLookup,
	}
	for k, v := range builtin {
		e.codecs[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Default returns the shared engine with the builtin registry.
func Default() *Engine { return defaultEngine }

// GenericLookup resolves a charset by its literal name through the IANA
// registry, then the WHATWG encoding index.
func GenericLookup(name string) (encoding.Encoding, error) {
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Resolve returns the codec for name.
func (e *Engine) Resolve(name string) (Codec, error) {
	if c, ok := e.codecs[Normalize(name)]; ok {
		return c, nil
	}
	if e.fallback == nil {
		return Codec{}, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	enc, err := e.fallback(name)
	if err != nil {
		return Codec{}, err
	}
	return Codec{Token: strings.ToLower(strings.TrimSpace(name)), Encoding: enc}, nil
}

// Encode converts UTF-8 text to bytes in the named charset.
// It fails with an *EncodingError when the name is unknown, the text is not
// valid UTF-8, or a rune has no representation in the charset.
func (e *Engine) Encode(text, name string) ([]byte, error) {
	c, err := e.Resolve(name)
	if err != nil {
		return nil, &EncodingError{Op: "encode", Encoding: name, Err: err}
	}
	if !utf8.ValidString(text) {
		return nil, &EncodingError{Op: "encode", Encoding: name, Err: errInvalidUTF8}
	}
	out, err := c.Encoding.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, &EncodingError{Op: "encode", Encoding: name, Err: err}
	}
	return out, nil
}

// Decode converts bytes in the named charset back to UTF-8 text.
// A leading byte-order mark is consumed for the unmarked UTF-16/UTF-32 forms.
func (e *Engine) Decode(data []byte, name string) (string, error) {
	c, err := e.Resolve(name)
	if err != nil {
		return "", &EncodingError{Op: "decode", Encoding: name, Err: err}
	}
	out, err := c.Encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", &EncodingError{Op: "decode", Encoding: name, Err: err}
	}
	return string(out), nil
}

// CharsetToken returns the lowercase label used in Content-Type headers
// ("IBM037" -> "ibm037"). Unregistered names are lowercased as-is; this
// never fails.
func (e *Engine) CharsetToken(name string) string {
	if c, ok := e.codecs[Normalize(name)]; ok {
		return c.Token
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Encode encodes text with the default engine.
func Encode(text, name string) ([]byte, error) { return defaultEngine.Encode(text, name) }

// Decode decodes data with the default engine.
func Decode(data []byte, name string) (string, error) { return defaultEngine.Decode(data, name) }

// CharsetToken resolves a Content-Type charset label with the default engine.
func CharsetToken(name string) string { return defaultEngine.CharsetToken(name) }
