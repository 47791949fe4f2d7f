package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ngfw-form/session"
)

func RegisterRoutes(manager *session.Manager, staticFS fs.FS, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(clientID)

	h := &handler{manager: manager, logger: logger}

	r.Get("/api/devices", h.listDevices)

	r.Route("/api/forms", func(r chi.Router) {
		r.Get("/", h.listForms)
		r.Post("/", h.createForm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getForm)
			r.Delete("/", h.killForm)
			r.Put("/device", h.selectDevice)
			r.Put("/fields/{name}", h.setField)
			r.Post("/fields/{name}/toggle", h.toggleField)
			r.Post("/fields/{name}/step", h.stepField)
			r.Post("/cards/{name}/click", h.clickCard)
			r.Put("/sections/{section}", h.setSection)
			r.Post("/disclaimer", h.acknowledgeDisclaimer)
			// WebSocket
			r.Get("/ws", h.handleWS)
		})
	})

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// In dev mode staticFS is already rooted at the page directory, so Sub
	// returns a wrapper unconditionally (no error) but the sub-FS would look
	// for static/static/* which doesn't exist. Probe index.html to detect this.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// http.FileServer redirects ".../index.html" to "./"; read it directly.
	r.Get("/", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/css/*", fileServer.ServeHTTP)
	r.Get("/js/*", fileServer.ServeHTTP)

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	manager *session.Manager
	logger  *slog.Logger
}
