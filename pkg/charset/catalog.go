package charset

import "strings"

// Family classifies a catalog encoding.
type Family string

const (
	FamilyEBCDIC  Family = "EBCDIC"
	FamilyUnicode Family = "Unicode"
	FamilyISO     Family = "ISO"
	FamilyWindows Family = "Windows"
)

// EncodingSpec describes one catalog entry.
type EncodingSpec struct {
	// Name is the canonical label, e.g. "UTF-16LE".
	Name string `json:"name"`
	// Family is the classification tag, e.g. "Unicode".
	Family Family `json:"family"`
	// CharsetToken is the lowercase label written into Content-Type.
	CharsetToken string `json:"charset_token"`
}

// The catalog order is significant: it fixes the variant index of every
// entry in a fuzz run.
var catalog = [...]EncodingSpec{
	{Name: "IBM037", Family: FamilyEBCDIC, CharsetToken: "ibm037"},
	{Name: "IBM500", Family: FamilyEBCDIC, CharsetToken: "ibm500"},
	{Name: "IBM1026", Family: FamilyEBCDIC, CharsetToken: "ibm1026"},
	{Name: "UTF-16", Family: FamilyUnicode, CharsetToken: "utf-16"},
	{Name: "UTF-16BE", Family: FamilyUnicode, CharsetToken: "utf-16be"},
	{Name: "UTF-16LE", Family: FamilyUnicode, CharsetToken: "utf-16le"},
	{Name: "UTF-32", Family: FamilyUnicode, CharsetToken: "utf-32"},
	{Name: "UTF-32BE", Family: FamilyUnicode, CharsetToken: "utf-32be"},
	{Name: "UTF-32LE", Family: FamilyUnicode, CharsetToken: "utf-32le"},
	{Name: "ISO-8859-1", Family: FamilyISO, CharsetToken: "iso-8859-1"},
	{Name: "ISO-8859-15", Family: FamilyISO, CharsetToken: "iso-8859-15"},
	{Name: "Windows-1252", Family: FamilyWindows, CharsetToken: "windows-1252"},
}

// Catalog returns the fixed, ordered encoding catalog.
// The returned slice is a copy and may be modified by the caller.
func Catalog() []EncodingSpec {
	out := make([]EncodingSpec, len(catalog))
	copy(out, catalog[:])
	return out
}

// CatalogSize is the number of catalog entries.
const CatalogSize = len(catalog)

// LookupSpec finds a catalog entry by any spelling of its name
// ("utf_16le", "UTF16LE", "utf-16le" all match UTF-16LE).
func LookupSpec(name string) (EncodingSpec, bool) {
	n := Normalize(name)
	for _, spec := range catalog {
		if Normalize(spec.Name) == n {
			return spec, true
		}
	}
	return EncodingSpec{}, false
}

// EncodingPlaceholder is substituted with the charset token in content-type
// templates.
const EncodingPlaceholder = "{encoding}"

var contentTypes = [...]string{
	"text/xml; charset={encoding}",
	"application/xml; charset={encoding}",
	"application/json; charset={encoding}",
	"application/x-www-form-urlencoded; charset={encoding}",
	"text/plain; charset={encoding}",
	"application/octet-stream",
}

// ContentTypes returns the content-type templates offered for substitution.
// The first entry is the default.
func ContentTypes() []string {
	out := make([]string, len(contentTypes))
	copy(out, contentTypes[:])
	return out
}

// DefaultContentType is the template used when none is configured.
const DefaultContentType = "text/xml; charset={encoding}"

// ResolveContentType substitutes every placeholder in template with token.
// Templates without a placeholder are returned unchanged.
func ResolveContentType(template, token string) string {
	return strings.ReplaceAll(template, EncodingPlaceholder, token)
}
