package docgen

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"unidocs-backend/lib/jsextract"
	"unidocs-backend/lib/jslink"
	"unidocs-backend/lib/scripthost"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Artifact is the reusable outcome of one extraction run: everything
// that does not depend on a particular student. memoized per
// (documentType, language) pair.
type Artifact struct {
	Script string `json:"script"`
	// data uri of the institution stamp, empty when the optional
	// fingerprint missed
	StampImage string `json:"stamp_image"`
	// raw extracted course-name array literal, kept for diagnostics
	CourseNames string `json:"course_names"`
	// per-dependency resolution outcome, local name -> resolved
	Dependencies map[string]bool `json:"dependencies"`
}

// buildArtifact runs the extraction pipeline: discover the main
// bundle, locate the document's chunk, recover the two rendering
// functions, link declared dependencies, stub the rest and reassemble
// everything into one self-contained script.
func (s *Service) buildArtifact(ctx context.Context, docType DocumentType) (*Artifact, error) {
	ctx, span := tracer.Start(ctx, "buildArtifact")
	defer span.End()
	span.SetAttributes(attribute.String("document_type", string(docType)))

	spec, ok := documentSpecs[docType]
	if !ok {
		return nil, fmt.Errorf("unknown document type %q", docType)
	}

	scripts, err := s.bundles.FindBundleScripts(ctx, "/")
	if err != nil {
		return nil, err
	}
	mainPath := ""
	for _, src := range scripts {
		if mainBundleRe.MatchString(src) {
			mainPath = src
			break
		}
	}
	if mainPath == "" {
		span.SetStatus(codes.Error, "main bundle not found")
		return nil, &PatternMissError{Resource: "main bundle"}
	}

	mainSrc, err := s.bundles.FetchText(ctx, s.bundles.Resolve(mainPath))
	if err != nil {
		return nil, err
	}

	chunkFp := jsextract.Fingerprint{
		Name:    fmt.Sprintf("%s chunk filename", docType),
		Kind:    jsextract.QuotedString,
		Pattern: regexp.MustCompile(`["']([^"']*` + regexp.QuoteMeta(spec.chunkKeyword) + `[^"']*\.js)["']`),
	}
	chunk := jsextract.FindFirst(mainSrc, chunkFp)
	if chunk == nil {
		span.SetStatus(codes.Error, "document chunk not found")
		return nil, &PatternMissError{Resource: chunkFp.Name}
	}

	targetSrc, err := s.bundles.FetchText(ctx, s.bundles.Resolve(chunk.Body))
	if err != nil {
		return nil, err
	}

	// required resources abort before any script execution is wasted
	definer := jsextract.FindFirst(targetSrc, spec.documentDefiner)
	if definer == nil {
		span.SetStatus(codes.Error, "document definer not found")
		return nil, &PatternMissError{Resource: spec.documentDefiner.Name}
	}
	tableGen := jsextract.FindFirst(targetSrc, spec.tableGenerator)
	if tableGen == nil {
		span.SetStatus(codes.Error, "table generator not found")
		return nil, &PatternMissError{Resource: spec.tableGenerator.Name}
	}

	// the stamp is optional, a missing image only costs the visual
	stamp := ""
	if spec.stampImage.Pattern != nil {
		m := jsextract.FindFirst(targetSrc, spec.stampImage)
		if m == nil {
			m = jsextract.FindFirst(mainSrc, spec.stampImage)
		}
		if m == nil {
			slog.WarnContext(
				ctx, "stamp image fingerprint missed, the document will lack it",
				"document_type", docType,
			)
		} else {
			stamp = m.Body
		}
	}

	courseNames := ""
	if spec.courseNames.Pattern != nil {
		m := jsextract.FindFirst(targetSrc, spec.courseNames)
		if m == nil {
			slog.DebugContext(ctx, "course name array fingerprint missed", "document_type", docType)
		} else {
			courseNames = m.Body
		}
	}

	linked := s.linker.LinkAll(ctx, targetSrc, mainSrc, spec.dependencies)
	linkedNames := make([]string, len(linked))
	depOutcomes := make(map[string]bool, len(linked))
	for i, dep := range linked {
		linkedNames[i] = dep.LocalName
		depOutcomes[dep.LocalName] = dep.Resolved
	}

	stubs := jslink.ComputeStubs(targetSrc, linkedNames, []string{
		scripthost.DateHelperName,
	})
	cleaned := jslink.CleanModuleSyntax(targetSrc)

	assembled := jslink.Assemble(stubs, linked, cleaned, []jslink.Exposure{
		{GlobalName: tableGlobal, LocalName: tableGen.BoundName},
		{GlobalName: definitionGlobal, LocalName: definer.BoundName},
	})

	span.SetAttributes(
		attribute.Int("script_bytes", len(assembled)),
		attribute.Bool("stamp_found", stamp != ""),
	)
	return &Artifact{
		Script:       assembled,
		StampImage:   stamp,
		CourseNames:  courseNames,
		Dependencies: depOutcomes,
	}, nil
}
