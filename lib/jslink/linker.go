package jslink

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("lib/jslink")

// DefaultExport is the sentinel ExportKeyword requesting the bundle's
// default (or bare named) export instead of an aliased one.
const DefaultExport = "default"

// Request declares one named module dependency the target script
// needs before it can run outside its bundler.
type Request struct {
	// substring identifying the dependency's chunk filename
	FileKeyword string
	// the alias the chunk re-exports the wanted symbol under, or
	// DefaultExport
	ExportKeyword string
	// local binding name used when the target script's own import
	// alias cannot be discovered
	FallbackName string
	// inert value literal bound to the local name when resolution
	// fails, e.g. `{}` or `[]`
	FallbackLiteral string
}

// Linked is the resolution outcome for one Request. Resolved=false
// still yields a usable no-op declaration.
type Linked struct {
	LocalName   string
	Declaration string
	Resolved    bool
}

// Fetcher is the slice of bundle.Client the linker needs.
type Fetcher interface {
	FetchText(ctx context.Context, link string) (string, error)
	Resolve(link string) string
}

type Linker struct {
	fetcher Fetcher
}

func NewLinker(fetcher Fetcher) *Linker {
	return &Linker{fetcher: fetcher}
}

// LinkAll resolves every request against the target script and the
// main bundle. it always returns exactly one Linked per request, in
// request order, regardless of per-request success: a dependency that
// cannot be resolved degrades to its fallback literal instead of
// failing the set. fetches run concurrently, output order does not
// depend on completion order.
func (l *Linker) LinkAll(ctx context.Context, target, mainBundle string, reqs []Request) []Linked {
	ctx, span := tracer.Start(ctx, "LinkAll")
	defer span.End()
	span.SetAttributes(attribute.Int("requests", len(reqs)))

	out := make([]Linked, len(reqs))
	wg := sync.WaitGroup{}
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			out[i] = l.link(ctx, target, mainBundle, req)
		}(i, req)
	}
	wg.Wait()

	resolved := 0
	for _, dep := range out {
		if dep.Resolved {
			resolved++
		}
	}
	span.SetAttributes(attribute.Int("resolved", resolved))
	return out
}

func (l *Linker) link(ctx context.Context, target, mainBundle string, req Request) Linked {
	localName := findLocalBinding(target, req.FileKeyword)
	if localName == "" {
		localName = req.FallbackName
	}

	fallback := Linked{
		LocalName:   localName,
		Declaration: fmt.Sprintf("var %s = %s;", localName, req.FallbackLiteral),
		Resolved:    false,
	}

	filename := findChunkFilename(target, req.FileKeyword)
	if filename == "" {
		filename = findChunkFilename(mainBundle, req.FileKeyword)
	}
	if filename == "" {
		slog.WarnContext(
			ctx, "no chunk filename found for dependency, using fallback",
			"keyword", req.FileKeyword,
		)
		return fallback
	}

	chunk, err := l.fetcher.FetchText(ctx, l.fetcher.Resolve(filename))
	if err != nil {
		slog.WarnContext(
			ctx, "failed to fetch dependency chunk, using fallback",
			"keyword", req.FileKeyword,
			"filename", filename,
			"err", err,
		)
		return fallback
	}

	internal := findExportedSymbol(chunk, req.ExportKeyword)
	if internal == "" {
		slog.WarnContext(
			ctx, "no export matching keyword in dependency chunk, using fallback",
			"keyword", req.FileKeyword,
			"export", req.ExportKeyword,
		)
		return fallback
	}

	// the chunk's top-level statements run inside a closure so its
	// names can't collide with the target script's own
	decl := fmt.Sprintf(
		"var %s = (function () {\n%s\nreturn %s;\n})();",
		localName,
		CleanModuleSyntax(chunk),
		internal,
	)
	return Linked{LocalName: localName, Declaration: decl, Resolved: true}
}

// findLocalBinding scans the target's import declarations for one
// referencing the keyword's chunk and reports the local name it binds.
func findLocalBinding(target, fileKeyword string) string {
	for _, decl := range parseImports(target) {
		if !containsKeyword(decl.Path, fileKeyword) {
			continue
		}
		if len(decl.Bindings) > 0 {
			return decl.Bindings[0]
		}
	}
	return ""
}

func containsKeyword(path, keyword string) bool {
	return keyword != "" && regexp.MustCompile(`(?i)`+regexp.QuoteMeta(keyword)).MatchString(path)
}

// findChunkFilename locates a quoted .js path containing the keyword.
// minified bundles routinely mention several related chunk names, so
// when more than one candidate appears the one most similar to the
// keyword wins.
func findChunkFilename(text, keyword string) string {
	if keyword == "" {
		return ""
	}
	re := regexp.MustCompile(`["']([^"']*` + regexp.QuoteMeta(keyword) + `[^"']*\.js)["']`)

	var best string
	var bestScore float64
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		score := matchr.JaroWinkler(keyword, m[1], false)
		if best == "" || score > bestScore {
			best = m[1]
			bestScore = score
		}
	}
	return best
}

var exportBraceRe = regexp.MustCompile(`export\s*\{([^}]*)\}`)
var exportDefaultRe = regexp.MustCompile(`export\s+default\s+([\w$]+)`)

// findExportedSymbol recovers the internal identifier a chunk
// re-exports under the requested alias. with the DefaultExport
// sentinel it also accepts `export default X` and bare named
// re-exports.
func findExportedSymbol(chunk, exportKeyword string) string {
	for _, m := range exportBraceRe.FindAllStringSubmatch(chunk, -1) {
		for _, part := range parseBraceEntries(m[1]) {
			internal, exported := part[0], part[1]
			if exported == exportKeyword {
				return internal
			}
			if exportKeyword == DefaultExport && internal == exported {
				return internal
			}
		}
	}
	if exportKeyword == DefaultExport {
		if m := exportDefaultRe.FindStringSubmatch(chunk); m != nil {
			return m[1]
		}
	}
	return ""
}
