package jsextract

import "regexp"

// Kind tags the structural shape a fingerprint recognizes inside a
// bundle. the set is closed, new shapes get a new tag.
type Kind int

const (
	// an assignment of a function to an identifier, cut either at a
	// terminator or by brace balancing
	FunctionBody Kind = iota
	// an assignment of an object/array/string literal to an identifier
	DataLiteral
	// a quoted string anywhere in the bundle, e.g. a chunk filename
	QuotedString
)

func (k Kind) String() string {
	switch k {
	case FunctionBody:
		return "function_body"
	case DataLiteral:
		return "data_literal"
	case QuotedString:
		return "quoted_string"
	}
	return "unknown"
}

// Fingerprint is a named structural pattern locating one wanted
// fragment in an untrusted bundle. fingerprints are defined statically
// per target resource and never mutated at runtime.
type Fingerprint struct {
	// semantic role, e.g. "table-generator", used in diagnostics
	Name string
	Kind Kind
	// locates the fragment. for FunctionBody and DataLiteral the
	// first capture group must be the bound identifier. for
	// QuotedString the first capture group is the wanted string.
	Pattern *regexp.Regexp
	// optional shape-specific end marker for body extraction. the
	// body runs from the start of Pattern's match to the end of the
	// first Terminator match after it. when nil, the body is cut by
	// brace balancing instead.
	Terminator *regexp.Regexp
}
