package locale

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Dictionary maps source-language phrases to target-language phrases.
// fetched once per app session and reused for every generation.
type Dictionary map[string]string

// keys ordered longest first so a short key never clobbers part of a
// longer phrase it is contained in. length ties break lexicographically
// to keep translation deterministic.
func (d Dictionary) sortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Translate applies the exact-key-else-substring policy: an exact
// dictionary hit wins outright; otherwise every key longer than two
// runes is substituted wherever it appears as a substring. short keys
// are never substituted, which limits (but does not eliminate) wrong
// partial replacements on short tokens.
func (d Dictionary) Translate(s string) string {
	if exact, ok := d[s]; ok {
		return exact
	}
	for _, key := range d.sortedKeys() {
		if utf8.RuneCountInString(key) <= 2 {
			continue
		}
		s = strings.ReplaceAll(s, key, d[key])
	}
	return s
}

var ordinalLabelRe = regexp.MustCompile(`^(\d+)-й\s+(.+)$`)

// TranslateLabel is Translate plus normalization of the russian
// ordinal label form: "1-й семестр" comes out containing "Semester 1"
// rather than the half-translated "1-й Semester".
func (d Dictionary) TranslateLabel(s string) string {
	out := d.Translate(s)
	if m := ordinalLabelRe.FindStringSubmatch(out); m != nil {
		return m[2] + " " + m[1]
	}
	return out
}

// TranslateValues walks a decoded json payload and translates every
// string leaf. maps and slices are rewritten in place.
func (d Dictionary) TranslateValues(v any) any {
	switch val := v.(type) {
	case string:
		return d.Translate(val)
	case map[string]any:
		for k, item := range val {
			val[k] = d.TranslateValues(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = d.TranslateValues(item)
		}
		return val
	}
	return v
}
