package utils

import (
	"regexp"
	"strings"
)

// MultipleSpaces matches any sequence of whitespace (including newlines).
var MultipleSpaces = regexp.MustCompile(`\s+`)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// CompressAllWhitespace replaces all whitespace sequences (including newlines) with a single space.
func CompressAllWhitespace(s string) string {
	return strings.TrimSpace(MultipleSpaces.ReplaceAllString(s, " "))
}

// TruncateWithEllipsis shortens s to maxRunes runes followed by an ellipsis.
// Strings that already fit are returned unchanged.
func TruncateWithEllipsis(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	return string(runes[:maxRunes]) + Ellipsis
}

// Preview collapses whitespace in s and truncates it for single-line display.
func Preview(s string, maxRunes int) string {
	return TruncateWithEllipsis(CompressAllWhitespace(s), maxRunes)
}
