package validate

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Clean trims, drops NUL bytes, NFC-normalizes and collapses inner whitespace.
// Use it for search terms and identifiers, never for text that is stored as
// typed.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = norm.NFC.String(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanText drops NUL bytes, NFC-normalizes and trims the ends. Inner
// whitespace and line breaks survive, so it suits stored text fields.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

// Errors maps a form field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns nil when there are no messages.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
