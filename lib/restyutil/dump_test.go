package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpExchanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Build", "abc123")
		w.Write([]byte("var x = 1;"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	client := resty.New()
	DumpExchanges(client, NewFilesystemOutput(dir))

	_, err := client.R().Get(srv.URL + "/assets/app.js")
	require.NoError(t, err)
	_, err = client.R().Get(srv.URL + "/assets/chunk.js")
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "1.http.txt"))
	require.NoError(t, err)
	require.Contains(t, string(first), "GET "+srv.URL+"/assets/app.js")
	require.Contains(t, string(first), "X-Build: abc123")
	require.Contains(t, string(first), "var x = 1;")

	_, err = os.Stat(filepath.Join(dir, "2.http.txt"))
	require.NoError(t, err)
}

func TestDumpExchangesNilOutputIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := resty.New()
	DumpExchanges(client, nil)
	_, err := client.R().Get(srv.URL)
	require.NoError(t, err)
}
