package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dwsmith1983/notifysmoke/internal/metrics"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Health reports liveness without touching the document store.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	metrics.HealthChecks.Add(1)
	h.writeJSON(w, http.StatusOK, HealthResponse{
		OK:      true,
		Service: ServiceName,
		Version: ServiceVersion,
	})
}

// Readiness reports whether the document store answers a ping.
func (h *Handlers) Readiness(w http.ResponseWriter, r *http.Request) {
	metrics.HealthChecks.Add(1)
	status := "ok"
	code := http.StatusOK
	if h.provider == nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else if err := h.provider.Ping(r.Context()); err != nil {
		h.logger.Warn("document store ping failed",
			"requestId", middleware.GetReqID(r.Context()),
			"error", err,
		)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, map[string]string{"status": status})
}
