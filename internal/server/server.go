// Package server implements the notifysmoke health HTTP server.
package server

import (
	"context"
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/internal/server/handlers"
)

// Server is the health HTTP server.
type Server struct {
	provider provider.Provider
	runner   handlers.RunFunc
	router   chi.Router
	srv      *http.Server
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRunner exposes POST /api/runs, which performs one smoke run per request.
func WithRunner(fn handlers.RunFunc) Option {
	return func(s *Server) { s.runner = fn }
}

// New creates a new HTTP server.
func New(addr string, prov provider.Provider, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		provider: prov,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	s.router = r
	s.registerRoutes(r)
	r.Handle("/debug/vars", expvar.Handler())

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests. It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	s.logger.Info("health server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server. A Stop that runs before Start
// makes the later Start return http.ErrServerClosed.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
