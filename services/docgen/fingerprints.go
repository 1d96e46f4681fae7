package docgen

import (
	"regexp"
	"unidocs-backend/lib/jsextract"
	"unidocs-backend/lib/jslink"
)

// fixed global names the execution host calls the recovered functions
// under, so nothing downstream depends on the upstream's obfuscated
// identifiers.
const (
	tableGlobal      = "__docTable"
	definitionGlobal = "__docDefinition"
)

// documentSpec is the closed, statically-defined description of how
// to recognize one document type's resources inside the upstream
// bundles. never mutated at runtime; a new upstream shape means a new
// revision of these patterns.
type documentSpec struct {
	// substring identifying the document's chunk filename inside the
	// main bundle
	chunkKeyword string

	// required: the pdf table-builder function
	tableGenerator jsextract.Fingerprint
	// required: the document-definition builder function
	documentDefiner jsextract.Fingerprint
	// optional: the embedded stamp image data uri, empty on miss
	stampImage jsextract.Fingerprint
	// optional: the localized course-name array
	courseNames jsextract.Fingerprint

	// named module dependencies the target chunk needs linked before
	// it can run outside its bundler
	dependencies []jslink.Request
}

var documentSpecs = map[DocumentType]documentSpec{
	Transcript: {
		chunkKeyword: "transcript",
		tableGenerator: jsextract.Fingerprint{
			Name:    "transcript table generator",
			Kind:    jsextract.FunctionBody,
			Pattern: regexp.MustCompile(`([\w$]+)\s*=\s*function\s*\([^)]*\)\s*\{\s*return\s*\{\s*table\s*:`),
		},
		documentDefiner: jsextract.Fingerprint{
			Name:    "transcript document definer",
			Kind:    jsextract.FunctionBody,
			Pattern: regexp.MustCompile(`([\w$]+)\s*=\s*function\s*\([^)]*\)\s*\{\s*return\s*\{\s*(?:pageSize|content)\s*:`),
		},
		stampImage: jsextract.Fingerprint{
			Name:    "institution stamp image",
			Kind:    jsextract.QuotedString,
			Pattern: regexp.MustCompile(`["'](data:image/(?:png|jpeg);base64,[A-Za-z0-9+/=]+)["']`),
		},
		courseNames: jsextract.Fingerprint{
			Name:       "course name array",
			Kind:       jsextract.DataLiteral,
			Pattern:    regexp.MustCompile(`([\w$]+)\s*=\s*\[\s*["']`),
			Terminator: regexp.MustCompile(`\]`),
		},
		dependencies: []jslink.Request{
			{
				FileKeyword:     "moment",
				ExportKeyword:   jslink.DefaultExport,
				FallbackName:    "moment",
				FallbackLiteral: "{}",
			},
			{
				FileKeyword:     "qrcode",
				ExportKeyword:   "toDataURL",
				FallbackName:    "qrcode",
				FallbackLiteral: "{}",
			},
			{
				FileKeyword:     "translations",
				ExportKeyword:   "dictionary",
				FallbackName:    "translations",
				FallbackLiteral: "{}",
			},
		},
	},
	Reference: {
		chunkKeyword: "reference",
		tableGenerator: jsextract.Fingerprint{
			Name:    "reference table generator",
			Kind:    jsextract.FunctionBody,
			Pattern: regexp.MustCompile(`([\w$]+)\s*=\s*function\s*\([^)]*\)\s*\{\s*return\s*\{\s*table\s*:`),
		},
		documentDefiner: jsextract.Fingerprint{
			Name:    "reference document definer",
			Kind:    jsextract.FunctionBody,
			Pattern: regexp.MustCompile(`([\w$]+)\s*=\s*function\s*\([^)]*\)\s*\{\s*return\s*\{\s*(?:pageSize|content)\s*:`),
		},
		stampImage: jsextract.Fingerprint{
			Name:    "institution stamp image",
			Kind:    jsextract.QuotedString,
			Pattern: regexp.MustCompile(`["'](data:image/(?:png|jpeg);base64,[A-Za-z0-9+/=]+)["']`),
		},
		dependencies: []jslink.Request{
			{
				FileKeyword:     "moment",
				ExportKeyword:   jslink.DefaultExport,
				FallbackName:    "moment",
				FallbackLiteral: "{}",
			},
			{
				FileKeyword:     "qrcode",
				ExportKeyword:   "toDataURL",
				FallbackName:    "qrcode",
				FallbackLiteral: "{}",
			},
		},
	},
}

// locates the spa's main bundle among the index page's script tags
var mainBundleRe = regexp.MustCompile(`(?:^|/)(?:app|main|index)[-.][0-9a-f]{6,}[^/]*\.js$`)
