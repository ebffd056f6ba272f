package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	// Error is a short human-readable description of what went wrong.
	Error string `json:"error"`

	// Details optionally carries the underlying cause.
	Details string `json:"details,omitempty"`
}

// respondJSON writes data as a JSON response with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; all that is left is to log it.
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondError writes a structured error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message, details string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
