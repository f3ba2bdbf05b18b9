package server

import (
	"net/http"
	"path"
	"strings"
)

const FallbackDocument = "index.html"

// StaticHandler serves files under Root and answers every unmatched GET or
// HEAD with the fallback document, so client-side routes resolve.
type StaticHandler struct {
	Root  http.FileSystem
	files http.Handler
}

func NewStaticHandler(root string) *StaticHandler {
	fsys := http.Dir(root)
	return &StaticHandler{Root: fsys, files: http.FileServer(fsys)}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if h.exists(r.URL.Path) {
		h.files.ServeHTTP(w, r)
		return
	}
	h.serveFallback(w, r)
}

// exists reports whether p names a servable file, or a directory holding the
// fallback document. Dotfiles count as absent.
func (h *StaticHandler) exists(p string) bool {
	p = path.Clean("/" + p)
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}

	f, err := h.Root.Open(p)
	if err != nil {
		return false
	}
	fi, err := f.Stat()
	f.Close()
	if err != nil {
		return false
	}
	if !fi.IsDir() {
		return true
	}

	idx, err := h.Root.Open(path.Join(p, FallbackDocument))
	if err != nil {
		return false
	}
	idx.Close()
	return true
}

func (h *StaticHandler) serveFallback(w http.ResponseWriter, r *http.Request) {
	f, err := h.Root.Open("/" + FallbackDocument)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, FallbackDocument, fi.ModTime(), f)
}
