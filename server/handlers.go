package server

import (
	"encoding/json"
	"net/http"

	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/logging"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// respondWithJSON writes payload as JSON with the given status code
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write JSON response", "error", err)
	}
}

// respondWithError writes {"error": message}
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// HealthCheck serves the checker's verdict; unhealthy and degraded states answer 503
func HealthCheck(checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, details, httpStatus := checker.HealthCheck()
		respondWithJSON(w, httpStatus, HealthResponse{
			Status: status,
			Data:   details,
		})
	}
}
