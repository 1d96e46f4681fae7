package docgen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/document-link", r.URL.Path)
		require.Equal(t, "Bearer token123", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "student-1", body["id"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"key":"k1","id":"l1","url":"https://docs.example/k1"}`))
	}))
	defer srv.Close()

	client := NewDeliveryClient(srv.URL, "token123")
	link, err := client.IssueLink(context.Background(), "student-1")
	require.NoError(t, err)
	require.Equal(t, DocumentLink{Key: "k1", Id: "l1", Url: "https://docs.example/k1"}, link)
}

func TestUploadMultipart(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/document-upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "l1", r.FormValue("id"))
		require.Equal(t, "student-1", r.FormValue("id_student"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "doc.pdf", header.Filename)
		raw, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, pdf, raw)
	}))
	defer srv.Close()

	client := NewDeliveryClient(srv.URL, "")
	err := client.Upload(context.Background(), pdf, "doc.pdf", "l1", "student-1")
	require.NoError(t, err)
}

func TestUploadFailureIsUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewDeliveryClient(srv.URL, "")
	err := client.Upload(context.Background(), []byte("x"), "doc.pdf", "l1", "s1")
	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/document-link/resolve", r.URL.Path)
		require.Equal(t, "k1", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://docs.example/k1"}`))
	}))
	defer srv.Close()

	client := NewDeliveryClient(srv.URL, "")
	url, err := client.Resolve(context.Background(), "k1")
	require.NoError(t, err)
	require.Equal(t, "https://docs.example/k1", url)
}

func TestResolveFailureIsResolveError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewDeliveryClient(srv.URL, "")
	_, err := client.Resolve(context.Background(), "missing")
	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
}
