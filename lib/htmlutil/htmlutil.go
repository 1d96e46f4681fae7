package htmlutil

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lib/htmlutil")

// ScriptSources walks a page's <script> tags and reports every src
// attribute in document order. inline scripts carry no src and are
// skipped.
func ScriptSources(ctx context.Context, doc *goquery.Document) []string {
	_, span := tracer.Start(ctx, "ScriptSources")
	defer span.End()

	var sources []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			return
		}
		sources = append(sources, src)
		span.AddEvent("script", trace.WithAttributes(
			attribute.String("src", src),
		))
	})

	span.SetAttributes(attribute.Int("count", len(sources)))
	return sources
}

// StylesheetSources reports every <link rel="stylesheet"> href, used
// for diagnostics when a page serves no scripts at all.
func StylesheetSources(ctx context.Context, doc *goquery.Document) []string {
	_, span := tracer.Start(ctx, "StylesheetSources")
	defer span.End()

	var sources []string
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if href == "" {
			return
		}
		sources = append(sources, href)
	})

	span.SetAttributes(attribute.Int("count", len(sources)))
	return sources
}
