package jslink

import (
	"fmt"
	"sort"
	"strings"
)

// StubValueName is the identifier the shared inert placeholder is
// bound to in the assembled script.
const StubValueName = "__unidocsStub"

// the universal dummy: callable, gettable, always yields itself.
// deeply chained calls on unresolved framework symbols must degrade
// to a no-op instead of throwing, since the target script is only
// syntactically included, never meaningfully executed.
const stubValueDecl = `var ` + StubValueName + ` = (function () {
	var u = new Proxy(function () {}, {
		get: function (target, prop) {
			if (prop === Symbol.toPrimitive) { return function () { return ""; }; }
			return u;
		},
		apply: function () { return u; },
		construct: function () { return u; }
	});
	return u;
})();`

// ComputeStubs scans every import declaration of the target script,
// subtracts the already-linked names and the reserved runtime names,
// and binds each remaining unresolved name to one shared placeholder.
// output is deterministic: bindings are emitted in sorted order.
func ComputeStubs(target string, linkedNames []string, reservedNames []string) string {
	skip := make(map[string]bool, len(linkedNames)+len(reservedNames))
	for _, name := range linkedNames {
		skip[name] = true
	}
	for _, name := range reservedNames {
		skip[name] = true
	}

	seen := map[string]bool{}
	var unresolved []string
	for _, decl := range parseImports(target) {
		for _, name := range decl.Bindings {
			if skip[name] || seen[name] {
				continue
			}
			seen[name] = true
			unresolved = append(unresolved, name)
		}
	}
	sort.Strings(unresolved)

	var b strings.Builder
	b.WriteString(stubValueDecl)
	b.WriteString("\n")
	for _, name := range unresolved {
		fmt.Fprintf(&b, "var %s = %s;\n", name, StubValueName)
	}
	return b.String()
}
