// Package web serves the static browser frontend.
package web

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/sundsoffice-tech/messebau-pm/internal/api"
)

const (
	indexFile = "index.html"

	msgFileNotFound = "Datei nicht gefunden"
	msgPathNotFound = "Pfad nicht gefunden"
)

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// Static serves files below a root directory. "/" and "/index.html" serve
// index.html; paths never escape the root.
type Static struct {
	dir string
}

// NewStatic creates a Static handler for dir. The directory does not have
// to exist yet; missing files are answered with 404.
func NewStatic(dir string) *Static {
	return &Static{dir: dir}
}

func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		api.WriteError(w, http.StatusNotFound, msgPathNotFound)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = indexFile
	}

	f, info, err := s.open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to open static file", "path", r.URL.Path, "error", err)
		}
		api.WriteError(w, http.StatusNotFound, msgFileNotFound)
		return
	}
	defer f.Close()

	ctype, ok := contentTypes[strings.ToLower(path.Ext(name))]
	if !ok {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// open opens name inside the root. Directories count as missing.
func (s *Static) open(name string) (*os.File, fs.FileInfo, error) {
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return nil, nil, err
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}
