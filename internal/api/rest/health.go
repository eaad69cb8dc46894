package rest

import (
	"net/http"
	"time"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Health returns a liveness handler. The backend is healthy when it can
// serve requests; upstream availability (directory, monitor) is surfaced
// per-endpoint, not here.
func Health(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Version:   version,
			Timestamp: time.Now().UTC(),
		})
	}
}
