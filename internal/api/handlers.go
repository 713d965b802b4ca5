package api

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/kudzaim/kiosk-commerce/pkg/errors"
)

// ApiResponse is the JSON envelope every endpoint answers with
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Health represents the health check response
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// healthCheckHandler handles the health check endpoint
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Error("Health check database ping failed", "error", err)
			status = "degraded"
		}
	}

	health := Health{
		Status:    status,
		Version:   "0.1.0",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	s.respondWithJSON(w, code, ApiResponse{
		Success: status == "ok",
		Data:    health,
	})
}

// decodeJSON parses a request body into dst
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	return true
}

// respondWithServiceError maps a service-layer error onto the envelope.
// Client errors keep their message; anything else is replaced with a generic
// body, the cause having been logged where it occurred.
func (s *Server) respondWithServiceError(w http.ResponseWriter, err error) {
	if apperrors.IsClientError(err) {
		s.respondWithError(w, apperrors.StatusCode(err), err.Error())
		return
	}

	s.respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// respondWithError sends a JSON response with an error message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, ApiResponse{
		Success: false,
		Error:   message,
	})
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)

	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
