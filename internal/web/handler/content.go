package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// ContentHandler serves content pack files from a directory. Directory
// listings are never served.
type ContentHandler struct {
	root fs.FS
}

// NewContentHandler creates a ContentHandler rooted at dir
func NewContentHandler(dir string) *ContentHandler {
	return &ContentHandler{root: os.DirFS(dir)}
}

// ServeHTTP handles GET of any file under the content directory
func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	info, err := fs.Stat(h.root, name)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
		return
	}

	http.ServeFileFS(w, r, h.root, name)
}
