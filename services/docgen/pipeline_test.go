package docgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"unidocs-backend/lib/artifactstore"
	"unidocs-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

const testIndexHtml = `<!doctype html>
<html><head>
<script src="/assets/polyfills.js"></script>
<script src="/assets/index-1f2e3d4c.js"></script>
</head><body><div id="app"></div></body></html>`

const testMainBundle = `var routes={
	transcript:"./assets/transcript-9a8b7c.js",
	reference:"./assets/reference-1a2b3c.js"
};`

const testMomentChunk = `var impl={now:function(){return 7;}};export{impl as default};`

const testTranscriptChunk = `import Vue from "./assets/vue-445566.js";
import m from "./assets/moment-112233.js";
var stampUri = "data:image/png;base64,AAAA";
var courses = ["Math", "Physics"];
var tbl = function (p) { return { table: { body: p.rows } }; };
var Ft = function (p, s, q) {
	return {
		pageSize: "A4",
		content: [
			p.student.name,
			p.rows[0].semester_label,
			p.rows[0].subject,
			s.cumulative_gpa,
			q,
			p.stamp,
			m.now(),
			String(Vue.use())
		],
		rowCount: tbl(p).table.body.length
	};
};
export { Ft as definer, tbl as tablegen };`

// a chunk with a table generator but no definition builder
const testBrokenReferenceChunk = `var rt = function (p) { return { table: { body: [] } }; };
export { rt as tablegen };`

type testPortal struct {
	*httptest.Server
	requests atomic.Int64
}

func newTestPortal(t *testing.T, transcriptChunk, referenceChunk string) *testPortal {
	portal := &testPortal{}
	portal.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		portal.requests.Add(1)
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(testIndexHtml))
		case "/assets/index-1f2e3d4c.js":
			w.Write([]byte(testMainBundle))
		case "/assets/transcript-9a8b7c.js":
			w.Write([]byte(transcriptChunk))
		case "/assets/reference-1a2b3c.js":
			w.Write([]byte(referenceChunk))
		case "/assets/moment-112233.js":
			w.Write([]byte(testMomentChunk))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(portal.Close)
	return portal
}

func newTestService(t *testing.T, opts Options) *Service {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "docgen",
		DbSchema: artifactstore.Schema,
	})
	t.Cleanup(cleanup)

	svc, err := NewService(opts, artifactstore.NewStore(result.DB))
	require.NoError(t, err)
	return svc
}

func TestBuildArtifact(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)
	svc := newTestService(t, Options{PortalUrl: portal.URL, ApiUrl: portal.URL})

	art, err := svc.LoadArtifact(context.Background(), Transcript, "ru")
	require.NoError(t, err)

	require.Equal(t, "data:image/png;base64,AAAA", art.StampImage)
	require.Contains(t, art.CourseNames, "Math")

	// one outcome per declared dependency, resolution never fails the set
	require.Equal(t, map[string]bool{
		"m":            true,
		"qrcode":       false,
		"translations": false,
	}, art.Dependencies)

	// the assembled script is self-contained: linked moment, stubbed
	// Vue, both recovered functions exposed
	require.Contains(t, art.Script, "var m = (function () {")
	require.Contains(t, art.Script, "var qrcode = {};")
	require.Contains(t, art.Script, "var Vue = __unidocsStub;")
	require.Contains(t, art.Script, "globalThis.__docTable = tbl;")
	require.Contains(t, art.Script, "globalThis.__docDefinition = Ft;")
	require.NotContains(t, art.Script, "import ")
	require.NotContains(t, art.Script, "export {")
}

func TestBuildArtifactMissingDefiner(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)
	svc := newTestService(t, Options{PortalUrl: portal.URL, ApiUrl: portal.URL})

	_, err := svc.LoadArtifact(context.Background(), Reference, "ru")
	var missErr *PatternMissError
	require.ErrorAs(t, err, &missErr)
	require.Equal(t, "reference document definer", missErr.Resource)
}

func TestBuildArtifactMissingMainBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><script src="/assets/vendor.js"></script></head></html>`))
	}))
	defer srv.Close()
	svc := newTestService(t, Options{PortalUrl: srv.URL, ApiUrl: srv.URL})

	_, err := svc.LoadArtifact(context.Background(), Transcript, "ru")
	var missErr *PatternMissError
	require.ErrorAs(t, err, &missErr)
	require.Equal(t, "main bundle", missErr.Resource)
}

func TestBuildArtifactMissingStampDegrades(t *testing.T) {
	chunk := `var tbl = function (p) { return { table: { body: p.rows } }; };
var Ft = function (p, s, q) { return { content: [q] }; };
export { Ft as definer, tbl as tablegen };`

	portal := newTestPortal(t, chunk, testBrokenReferenceChunk)
	svc := newTestService(t, Options{PortalUrl: portal.URL, ApiUrl: portal.URL})

	art, err := svc.LoadArtifact(context.Background(), Transcript, "ru")
	require.NoError(t, err)
	require.Empty(t, art.StampImage)
}

func TestLoadArtifactMemoization(t *testing.T) {
	portal := newTestPortal(t, testTranscriptChunk, testBrokenReferenceChunk)

	store, err := artifactstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc, err := NewService(Options{PortalUrl: portal.URL, ApiUrl: portal.URL}, store)
	require.NoError(t, err)

	first, err := svc.LoadArtifact(context.Background(), Transcript, "ru")
	require.NoError(t, err)
	fetched := portal.requests.Load()
	require.Greater(t, fetched, int64(0))

	// second call hits the in-memory cache
	second, err := svc.LoadArtifact(context.Background(), Transcript, "ru")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, fetched, portal.requests.Load())

	// a fresh service with the same store reloads from disk, still
	// without touching the portal
	fresh, err := NewService(Options{PortalUrl: portal.URL, ApiUrl: portal.URL}, store)
	require.NoError(t, err)
	third, err := fresh.LoadArtifact(context.Background(), Transcript, "ru")
	require.NoError(t, err)
	require.Equal(t, first.Script, third.Script)
	require.Equal(t, fetched, portal.requests.Load())
}
