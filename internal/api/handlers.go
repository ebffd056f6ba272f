package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/phishscan/phishscan/internal/feature"
)

// CheckRequest is the body of a POST /check call.
type CheckRequest struct {
	// URL is the address to classify. Required, non-empty.
	URL string `json:"url"`
}

// HealthResponse is the body of a GET /health call.
type HealthResponse struct {
	// Status is "ok" once the service is up. The classifier loads
	// before the server starts, so a reachable service is a ready one.
	Status string `json:"status"`

	// ModelVersion identifies the loaded classifier artifact.
	ModelVersion string `json:"model_version"`

	// Version is the phishscan build version.
	Version string `json:"version,omitempty"`
}

// handleCheck classifies one URL and returns the fusion result.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		s.respondError(w, http.StatusBadRequest, "url is required", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.CheckTimeout)
	defer cancel()

	report, err := s.checker.Check(ctx, req.URL)
	if err != nil {
		if errors.Is(err, feature.ErrInvalidURL) {
			s.respondError(w, http.StatusBadRequest, "invalid URL", err.Error())
			return
		}
		s.logger.Error("check failed", "url", req.URL, "error", err)
		s.respondError(w, http.StatusInternalServerError, "check failed", "")
		return
	}

	s.metrics.ObserveCheck(report)

	if s.store != nil {
		if _, err := s.store.Save(r.Context(), report); err != nil {
			s.logger.Warn("failed to record check in history",
				"url", req.URL,
				"error", err,
			)
		}
	}

	s.respondJSON(w, http.StatusOK, report.Result())
}

// handleHealth reports service readiness and the loaded model version.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		ModelVersion: s.checker.ModelVersion(),
		Version:      s.version,
	})
}
