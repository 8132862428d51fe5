// Package rest exposes the operator HTTP API: status, scene control and
// the event stream. All routes under /api/v1 require the admin token.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkaji/scenebox/internal/app/director"
	"github.com/mkaji/scenebox/internal/infra/config"
)

// Server holds the API dependencies. The HTTP listener itself is owned
// by the caller.
type Server struct {
	cfg      *config.Config
	director *director.Director
}

// New creates an API server backed by the given director.
func New(cfg *config.Config, d *director.Director) *Server {
	return &Server{cfg: cfg, director: d}
}

// Handler builds the routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(bodyLimitMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware(s.cfg.Admin.Token))

		r.Get("/status", s.handleStatus)
		r.Get("/scenes", s.handleScenes)
		r.Post("/override", s.handleOverride)
		r.Post("/autoplay/pause", s.handlePause)
		r.Post("/autoplay/resume", s.handleResume)
		r.Post("/unload", s.handleUnload)
		r.Get("/events", s.handleEvents)
	})

	return r
}
