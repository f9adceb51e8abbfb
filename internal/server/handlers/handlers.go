// Package handlers implements HTTP request handlers for the health server.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dwsmith1983/notifysmoke/internal/provider"
)

// Service identity reported by /health.
const (
	ServiceName    = "citysmart-backend"
	ServiceVersion = "1.6"
)

var errNoReport = errors.New("smoke run produced no report")

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	provider provider.Provider
	logger   *slog.Logger
	run      RunFunc
	running  sync.Mutex
}

// New creates a new Handlers instance.
func New(prov provider.Provider) *Handlers {
	return &Handlers{
		provider: prov,
		logger:   slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}
