package api

import (
	"net/http"
	"time"

	"wordsmith/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Session   string    `json:"session"`
	Uptime    string    `json:"uptime"`
}

// handleHealth responds to liveness checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	WriteJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Short(),
		Session:   s.engine.SessionID(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}, http.StatusOK)
}
