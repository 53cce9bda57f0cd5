package handler

import (
	"context"
	"net/http"

	"github.com/freeeve/arena-agent/internal/logger"
	"github.com/freeeve/arena-agent/internal/model"
)

// StatusSource reports the agent's current state.
type StatusSource interface {
	Status(ctx context.Context) (*model.AgentStatus, error)
}

// StatusHandler serves the agent status and health endpoints.
type StatusHandler struct {
	src StatusSource
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(src StatusSource) *StatusHandler {
	return &StatusHandler{src: src}
}

// Status handles GET /api/v1/status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.src.Status(r.Context())
	if err != nil {
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Msg("Failed to load status")
		writeError(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Healthz handles GET /healthz.
func (h *StatusHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
