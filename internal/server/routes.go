package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/dwsmith1983/notifysmoke/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.provider)
	h.SetLogger(s.logger)
	h.SetRunner(s.runner)

	r.Group(func(r chi.Router) {
		r.Use(jsonContentType)
		r.Get("/health", h.Health)
		r.Get("/api/health", h.Readiness)
		if s.runner != nil {
			r.Post("/api/runs", h.TriggerRun)
		}
	})
}
