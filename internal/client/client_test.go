package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/pvdash/internal/client"
)

func TestUploadSendsMultipartFileAndConfig(t *testing.T) {
	var (
		gotPath   string
		gotFile   []byte
		gotName   string
		gotConfig client.UploadConfig
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gotName = header.Filename
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		require.NoError(t, json.Unmarshal([]byte(r.FormValue("config")), &gotConfig))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "verhoor.docx")
	require.NoError(t, os.WriteFile(src, []byte("document body"), 0644))

	c := client.New(srv.URL)
	cfg := client.UploadConfig{UUID: "abc-123", Advanced: true, Model: "gpt-4o"}
	require.NoError(t, c.Upload(context.Background(), src, cfg))

	assert.Equal(t, "/upload/abc-123", gotPath)
	assert.Equal(t, "verhoor.docx", gotName)
	assert.Equal(t, "document body", string(gotFile))
	assert.Equal(t, cfg, gotConfig)
}

func TestUploadSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bestand te groot", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	c := client.New(srv.URL)
	err := c.Upload(context.Background(), src, client.UploadConfig{UUID: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bestand te groot")
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/rapport.pdf", r.URL.Path)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	dest := t.TempDir()
	c := client.New(srv.URL)

	path, err := c.Download(context.Background(), "rapport.pdf", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "rapport.pdf"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))
}

func TestDownloadResolvesServerRelativeReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/rapport.pdf", r.URL.Path)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	path, err := c.Download(context.Background(), "/files/rapport.pdf", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "rapport.pdf", filepath.Base(path))
}

func TestSessionIDIsStable(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	first, err := client.SessionID()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := client.SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, second, "session id should persist across calls")

	require.NoError(t, client.ResetSession())
	third, err := client.SessionID()
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "reset should start a fresh session")
}

func TestDownloadRejectsMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.Download(context.Background(), "weg.pdf", t.TempDir())
	require.Error(t, err)
}
