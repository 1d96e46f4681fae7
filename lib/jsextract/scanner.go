package jsextract

import (
	"log/slog"
	"strings"
)

// Match is the outcome of applying a fingerprint to a bundle.
type Match struct {
	// the identifier the fragment is bound to, when the shape has one
	BoundName string
	// the extracted fragment text
	Body string
	// raw capture groups of the fingerprint's pattern
	Groups []string
	// span of the fragment within the scanned text
	Start int
	End   int
}

// FindFirst applies a fingerprint to a bundle and returns the first
// structural occurrence, or nil when the pattern never matches. it
// never returns an error: a miss is an expected outcome and the
// caller decides whether it is fatal.
//
// first occurrence wins. the target bundles are assumed to define
// each logical resource exactly once per deployment; when that
// assumption breaks the extra candidates are logged, not rejected.
func FindFirst(text string, fp Fingerprint) *Match {
	locs := fp.Pattern.FindAllStringSubmatchIndex(text, 2)
	if len(locs) == 0 {
		return nil
	}
	if len(locs) > 1 {
		slog.Debug(
			"fingerprint matched more than once, taking the first occurrence",
			"fingerprint", fp.Name,
			"kind", fp.Kind.String(),
		)
	}

	loc := locs[0]
	groups := make([]string, 0, len(loc)/2-1)
	for i := 2; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, text[loc[i]:loc[i+1]])
	}

	m := &Match{
		Groups: groups,
		Start:  loc[0],
		End:    loc[1],
	}
	if len(groups) > 0 {
		m.BoundName = groups[0]
	}

	switch fp.Kind {
	case QuotedString:
		if len(groups) == 0 {
			return nil
		}
		m.Body = groups[0]
		return m

	case FunctionBody, DataLiteral:
		end, ok := cutBody(text, loc[0], fp)
		if !ok {
			slog.Debug(
				"fingerprint matched but the body could not be cut",
				"fingerprint", fp.Name,
			)
			return nil
		}
		m.End = end
		m.Body = stripDanglingComma(text[loc[0]:end])
		return m
	}

	return m
}

// cutBody finds the end of a fragment starting at `start`. with a
// terminator fingerprint it cuts at the end of the terminator's first
// match; otherwise it brace-balances from the fragment's first `{`.
// this is a best-effort substring cut, not parsing. downstream
// consumers tolerate trailing garbage.
func cutBody(text string, start int, fp Fingerprint) (int, bool) {
	if fp.Terminator != nil {
		loc := fp.Terminator.FindStringIndex(text[start:])
		if loc == nil {
			return 0, false
		}
		return start + loc[1], true
	}
	return balanceBraces(text, start)
}

// balanceBraces scans from the first `{` at or after `start` and
// returns the index one past its matching `}`. quoted strings are
// skipped so braces inside literals don't unbalance the count; regex
// literals are not understood, which is an accepted gap.
func balanceBraces(text string, start int) (int, bool) {
	open := strings.IndexByte(text[start:], '{')
	if open < 0 {
		return 0, false
	}

	depth := 0
	var quote byte
	for i := start + open; i < len(text); i++ {
		c := text[i]

		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func stripDanglingComma(body string) string {
	trimmed := strings.TrimRight(body, " \t\n")
	return strings.TrimSuffix(trimmed, ",")
}
