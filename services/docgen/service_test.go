package docgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stand-in layout library: serializes the definition instead of
// producing real pdf bytes, which keeps the output assertable
const testLayoutLibrary = `
var pdfMake = {
	createPdf: function (definition) {
		return {
			getBase64: function (cb) {
				setTimeout(function () { cb(btoa(JSON.stringify(definition))); });
			}
		};
	}
};
`

func newTestApi(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dictionary":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"Иванов Иван": "Ivanov Ivan",
				"Математический анализ": "Mathematical Analysis",
				"семестр": "Semester",
				"экзамен": "exam"
			}`))
		case "/document-link":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"key":"k1","id":"l1","url":"https://docs.example/k1"}`))
		case "/document-generate":
			w.Write([]byte(`{"ok":true}`))
		case "/document-upload":
			w.Write([]byte(`{"ok":true}`))
		case "/document-link/resolve":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"url":"https://docs.example/k1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testGenerationRequest() GenerationRequest {
	return GenerationRequest{
		Type:        Transcript,
		Language:    "ru",
		StudentId:   "student-1",
		StudentInfo: map[string]any{"name": "Иванов Иван"},
		Rows: []TranscriptRow{
			{Semester: 1, Subject: "Математический анализ", ControlType: "экзамен", Credits: 4, Grade: 4.00},
		},
		LinkId: "l1",
		QrUrl:  "https://qr.example/x",
	}
}

func TestGenerateNativeLanguage(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)
	api := newTestApi(t)
	svc := newTestService(t, Options{
		PortalUrl:     portal.URL,
		ApiUrl:        api.URL,
		LayoutLibrary: testLayoutLibrary,
		Now:           func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) },
	})

	doc, err := svc.Generate(context.Background(), testGenerationRequest())
	require.NoError(t, err)

	// the recovered definition builder saw the payload, the computed
	// stats, the qr url, the extracted stamp, the linked dependency and
	// the inert stub
	require.JSONEq(t, `{
		"pageSize": "A4",
		"content": [
			"Иванов Иван",
			"1-й семестр",
			"Математический анализ",
			4,
			"https://qr.example/x",
			"data:image/png;base64,AAAA",
			7,
			""
		],
		"rowCount": 1
	}`, string(doc.Bytes))

	require.Regexp(t, regexp.MustCompile(`^transcript_student-1_.{8}\.pdf$`), doc.Filename)
	require.Empty(t, doc.Path)
}

func TestGenerateTranslated(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)
	api := newTestApi(t)
	svc := newTestService(t, Options{
		PortalUrl:     portal.URL,
		ApiUrl:        api.URL,
		LayoutLibrary: testLayoutLibrary,
	})

	req := testGenerationRequest()
	req.Language = "en"
	doc, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	require.Contains(t, string(doc.Bytes), `"Ivanov Ivan"`)
	require.Contains(t, string(doc.Bytes), `"Mathematical Analysis"`)
	// the russian ordinal label comes out reordered, not half-translated
	require.Contains(t, string(doc.Bytes), `"Semester 1"`)
	require.NotContains(t, string(doc.Bytes), "1-й")
}

func TestGenerateIdempotentBytes(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)
	api := newTestApi(t)
	svc := newTestService(t, Options{
		PortalUrl:     portal.URL,
		ApiUrl:        api.URL,
		LayoutLibrary: testLayoutLibrary,
		Now:           func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) },
	})

	first, err := svc.Generate(context.Background(), testGenerationRequest())
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), testGenerationRequest())
	require.NoError(t, err)

	// same inputs and clock produce identical documents, only the
	// filename suffix differs
	require.Equal(t, first.Bytes, second.Bytes)
	require.NotEqual(t, first.Filename, second.Filename)
}

func TestGenerateAndDeliverWithOutputDir(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)
	api := newTestApi(t)
	outputDir := t.TempDir()
	svc := newTestService(t, Options{
		PortalUrl:     portal.URL,
		ApiUrl:        api.URL,
		LayoutLibrary: testLayoutLibrary,
		OutputDir:     outputDir,
	})

	ctx := context.Background()
	link, err := svc.Delivery().IssueLink(ctx, "student-1")
	require.NoError(t, err)
	require.NoError(t, svc.Delivery().Trigger(ctx, link.Id))

	doc, err := svc.Generate(ctx, testGenerationRequest())
	require.NoError(t, err)
	require.NotEmpty(t, doc.Path)
	persisted, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	require.Equal(t, doc.Bytes, persisted)

	url, err := svc.Deliver(ctx, doc, link, "student-1")
	require.NoError(t, err)
	require.Equal(t, "https://docs.example/k1", url)

	// the durable copy is cleaned up after a successful upload
	_, err = os.Stat(doc.Path)
	require.True(t, os.IsNotExist(err))
}
