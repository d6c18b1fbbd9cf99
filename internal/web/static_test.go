package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStaticDir(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "static")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Projekte</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte("init()"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	// Outside the static root; must never be served.
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.db"), []byte("secret"), 0644))
	return dir
}

func get(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestStaticServesFiles(t *testing.T) {
	h := NewStatic(setupStaticDir(t))

	tests := []struct {
		target      string
		contentType string
		body        string
	}{
		{"/", "text/html; charset=utf-8", "<h1>Projekte</h1>"},
		{"/index.html", "text/html; charset=utf-8", "<h1>Projekte</h1>"},
		{"/style.css", "text/css; charset=utf-8", "body{}"},
		{"/js/app.js", "application/javascript; charset=utf-8", "init()"},
		{"/notes.txt", "application/octet-stream", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestStaticMissingFiles(t *testing.T) {
	h := NewStatic(setupStaticDir(t))

	for _, target := range []string{"/missing.js", "/js", "/js/", "/../secret.db", "/js/../../secret.db"} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, h, http.MethodGet, target)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, msgFileNotFound, errorMessage(t, rec))
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestStaticMissingRoot(t *testing.T) {
	h := NewStatic(filepath.Join(t.TempDir(), "nope"))

	rec := get(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgFileNotFound, errorMessage(t, rec))
}

func TestStaticRejectsWrites(t *testing.T) {
	h := NewStatic(setupStaticDir(t))

	rec := get(t, h, http.MethodPost, "/index.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgPathNotFound, errorMessage(t, rec))
}
