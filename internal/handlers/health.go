package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/savethebee/honeyweb/internal/service"
)

type HealthHandler struct {
	Health *service.HealthService
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("pong"))
}

// Ready answers 503 until the database accepts connections.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if !h.Health.IsConnected(ctx) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) HealthStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Health.Status(r.Context())
	status := http.StatusOK
	if !st.IsConnected {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, st)
}

// DatabaseStatus always answers 200 so the page can show the failure.
func (h *HealthHandler) DatabaseStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Health.Status(r.Context()))
}
