package textutil

import (
	"regexp"
	"strings"
)

var unsafeRunes = regexp.MustCompile(`[^\p{L}\p{N}\-]+`)

// NormalizeToken turns free-form identity text (student ids sometimes
// carry spaces or punctuation) into a token safe for filenames and
// storage keys.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeRunes.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
