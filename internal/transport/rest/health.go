package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status     string                `json:"status"`
	Timestamp  time.Time             `json:"timestamp"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// pingHandler is the liveness probe. It answers as long as the process
// is serving requests, regardless of downstream health.
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "pong"})
}

// healthCheckHandler is the readiness probe. It pings the transaction
// database and reports per-component status.
func healthCheckHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{
			Status:     "healthy",
			Timestamp:  time.Now().UTC(),
			Components: map[string]CheckEntry{},
		}

		if err := db.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Components["database"] = CheckEntry{Status: "down", Error: err.Error()}
		} else {
			resp.Components["database"] = CheckEntry{Status: "up"}
		}

		status := http.StatusOK
		if resp.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
