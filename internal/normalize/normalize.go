// Package normalize strips diacritics so stored and compared text is
// plain ASCII-ish regardless of how the portal spelled it.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops the combining marks. A rune
// with no decomposition passes through unchanged.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// String returns s with accents and diacritics removed.
func String(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Fold normalizes and lowercases, the canonical form for matching.
func Fold(s string) string {
	return strings.ToLower(String(s))
}

// Value applies String recursively over a decoded JSON value: strings
// are normalized, map keys and nested values included; non-string
// scalars pass through untouched.
func Value(v any) any {
	switch value := v.(type) {
	case string:
		return String(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, item := range value {
			out[String(key)] = Value(item)
		}
		return out
	default:
		return v
	}
}
