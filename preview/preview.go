// Package preview serves a prerendered output tree the way a static host would.
package preview

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// Handler serves files under dir. Directories resolve to their index.html.
// Unknown paths get fallback with status 200 when fallback is set (SPA mode),
// otherwise <dir>/404.html with status 404.
func Handler(dir string, fallback []byte) http.Handler {
	router := httprouter.New()
	router.RedirectTrailingSlash = false

	serve := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name := path.Clean("/" + ps.ByName("filepath"))
		file := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(name, "/")))

		if info, err := os.Stat(file); err == nil && info.IsDir() {
			file = filepath.Join(file, "index.html")
		}

		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			http.ServeFile(w, r, file)
			return
		}

		notFound(w, r, dir, fallback)
	}

	router.GET("/*filepath", serve)
	router.HEAD("/*filepath", serve)
	return router
}

func notFound(w http.ResponseWriter, r *http.Request, dir string, fallback []byte) {
	if fallback != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(fallback)
		return
	}

	page, err := os.ReadFile(filepath.Join(dir, "404.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(page)
}
