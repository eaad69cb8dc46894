package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orivyx/orivyx-backend/internal/monitor"
)

// MonitorHandler proxies the VPS monitor for the admin dashboard.
type MonitorHandler struct {
	client *monitor.Client
}

// NewMonitorHandler creates a new monitor handler.
func NewMonitorHandler(client *monitor.Client) *MonitorHandler {
	return &MonitorHandler{client: client}
}

// RegisterRoutes registers monitor routes.
func (h *MonitorHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/monitor/realtime", h.Realtime).Methods("GET")
	router.HandleFunc("/monitor/history", h.History).Methods("GET")
}

// Realtime handles GET /monitor/realtime.
func (h *MonitorHandler) Realtime(w http.ResponseWriter, r *http.Request) {
	sample, err := h.client.Realtime(r.Context())
	if err != nil {
		respondErrorWithCode(w, http.StatusBadGateway, ErrCodeUpstreamError, "Monitor unavailable")
		return
	}
	respondJSON(w, http.StatusOK, sample)
}

// History handles GET /monitor/history. Always 200: the client degrades to
// a simulated series when the monitor has no data.
func (h *MonitorHandler) History(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.client.History(r.Context()))
}
