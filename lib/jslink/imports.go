package jslink

import (
	"regexp"
	"strings"
)

// matches one es-module import declaration in minified or readable
// form: `import d from "x"`, `import * as ns from "x"`,
// `import d, {a as b} from "x"`, `import "x"`. capture groups:
// 1 default binding before a brace group, 2 brace group contents,
// 3 namespace alias, 4 bare default binding, 5 module path.
var importRe = regexp.MustCompile(
	`import\s*(?:([\w$]+)\s*,\s*)?(?:\{([^}]*)\}|\*\s*as\s+([\w$]+)|([\w$]+))?\s*(?:from\s*)?["']([^"']*)["']\s*;?`)

type importDecl struct {
	// module path string as written in the declaration
	Path string
	// every local name the declaration binds, aliased forms resolved
	// to the local side of the alias
	Bindings []string
}

func parseImports(src string) []importDecl {
	var decls []importDecl
	for _, m := range importRe.FindAllStringSubmatch(src, -1) {
		decl := importDecl{Path: m[5]}
		if m[1] != "" {
			decl.Bindings = append(decl.Bindings, m[1])
		}
		if m[2] != "" {
			decl.Bindings = append(decl.Bindings, parseBraceBindings(m[2])...)
		}
		if m[3] != "" {
			decl.Bindings = append(decl.Bindings, m[3])
		}
		if m[4] != "" {
			decl.Bindings = append(decl.Bindings, m[4])
		}
		decls = append(decls, decl)
	}
	return decls
}

// splits `A as b, C` into [source, local] pairs
func parseBraceEntries(group string) [][2]string {
	var entries [][2]string
	for _, part := range strings.Split(group, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) == 3 && fields[1] == "as" {
			entries = append(entries, [2]string{fields[0], fields[2]})
			continue
		}
		entries = append(entries, [2]string{fields[0], fields[0]})
	}
	return entries
}

// `a as b, c` binds b and c locally
func parseBraceBindings(group string) []string {
	entries := parseBraceEntries(group)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e[1]
	}
	return names
}
