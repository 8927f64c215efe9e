package render

import (
	"strings"
	"unicode"
)

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Sanitize strips control characters, escapes markup-significant characters
// and trims surrounding whitespace.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(markupEscaper.Replace(s))
}

// isRestroomCaption matches captions that restroom icons replace.
func isRestroomCaption(s string) bool {
	return strings.Contains(strings.ToLower(s), "wc") ||
		strings.EqualFold(s, "м") ||
		strings.EqualFold(s, "ж")
}
