package jslink

import (
	"fmt"
	"regexp"
	"strings"
)

// Exposure rebinds one function the cleaned script defines under an
// obfuscated upstream name to a fixed global name the execution host
// can call.
type Exposure struct {
	GlobalName string
	LocalName  string
}

var exportBraceStmtRe = regexp.MustCompile(`export\s*\{[^}]*\}\s*(?:from\s*["'][^"']*["'])?\s*;?`)
var exportDefaultStmtRe = regexp.MustCompile(`export\s+default\s+`)
var exportDeclRe = regexp.MustCompile(`export\s+(const|let|var|function|class|async)\b`)

// CleanModuleSyntax strips es-module import/export statements from a
// bundle by pattern substitution. intentionally shallow: only the
// named statement shapes are removed, everything else stays verbatim.
func CleanModuleSyntax(src string) string {
	src = importRe.ReplaceAllString(src, "")
	src = exportBraceStmtRe.ReplaceAllString(src, "")
	src = exportDefaultStmtRe.ReplaceAllString(src, "")
	src = exportDeclRe.ReplaceAllString(src, "$1")
	return src
}

// Assemble concatenates stub declarations, linked-dependency
// declarations and the cleaned target script into one self-contained
// executable unit. ordering is load-bearing: by the time the cleaned
// script runs, every free identifier it might touch is already bound.
func Assemble(stubs string, linked []Linked, cleanedTarget string, exposures []Exposure) string {
	var b strings.Builder

	b.WriteString(stubs)
	b.WriteString("\n")
	for _, dep := range linked {
		b.WriteString(dep.Declaration)
		b.WriteString("\n")
	}

	b.WriteString(";(function () {\n")
	b.WriteString(cleanedTarget)
	b.WriteString("\n")
	for _, e := range exposures {
		fmt.Fprintf(&b, "globalThis.%s = %s;\n", e.GlobalName, e.LocalName)
	}
	b.WriteString("})();\n")

	return b.String()
}
