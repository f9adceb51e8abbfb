package handlers

import (
	"context"
	"net/http"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// RunFunc performs one smoke run. A nil report means the run could not be set up.
type RunFunc func(ctx context.Context) (*types.Report, error)

// SetRunner sets the function TriggerRun calls. Routes register TriggerRun
// only when a runner is set.
func (h *Handlers) SetRunner(fn RunFunc) {
	h.run = fn
}

// TriggerRun executes a smoke run and returns its report. Runs never overlap;
// a request arriving while one is in progress gets 409.
func (h *Handlers) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if !h.running.TryLock() {
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "smoke run already in progress"})
		return
	}
	defer h.running.Unlock()

	report, err := h.run(r.Context())
	if report == nil {
		if err == nil {
			err = errNoReport
		}
		h.logger.Error("smoke run setup failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}
