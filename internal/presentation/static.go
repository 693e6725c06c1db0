package presentation

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed web/*
var webFS embed.FS

var resultPages = []string{"success.html", "pending.html", "failure.html"}

// MountStatic serves the landing page and the payment result pages the
// return handler redirects to. Result pages are never cached.
func MountStatic(r chi.Router) {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, sub, "index.html")
	})
	for _, page := range resultPages {
		r.Get("/"+page, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFileFS(w, r, sub, page)
		})
	}
}
