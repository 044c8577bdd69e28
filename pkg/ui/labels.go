package ui

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title turns a snake_case field name into a column heading:
// "response_length" becomes "Response Length".
func Title(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

// StatusText renders an HTTP status, "-" when none was read.
func StatusText(code int) string {
	if code == 0 {
		return "-"
	}
	return StatusCodeStyle(code).Render(strconv.Itoa(code))
}
