package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseText replaces non-breaking spaces with ordinary spaces,
// collapses whitespace runs to a single space, and trims the ends.
// Idempotent; an empty input yields an empty string.
func CollapseText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// DedupeKey derives the case-insensitive identity under which duplicate
// tiles are folded: trimmed, lowercased display name.
func DedupeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Shorten fits a display name into width runes, ellipsis included.
// Whole words are kept while they fit; a single word longer than the
// width is hard-cut. Names that already fit come back unchanged.
func Shorten(s string, width int) string {
	s = CollapseText(s)
	if utf8.RuneCountInString(s) <= width {
		return s
	}

	var kept string
	for _, word := range strings.Fields(s) {
		candidate := word
		if kept != "" {
			candidate = kept + " " + word
		}
		if utf8.RuneCountInString(candidate)+1 > width {
			break
		}
		kept = candidate
	}
	if kept == "" {
		runes := []rune(s)
		kept = string(runes[:width-1])
	}
	return kept + "…"
}
