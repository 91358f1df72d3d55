// Package api provides the stateless intake engine handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/RenoMatch/RenoIntake/internal/intake"
	"github.com/RenoMatch/RenoIntake/internal/models"
)

// NormalizeResult is the payload returned by POST /intake/normalize.
type NormalizeResult struct {
	FieldID      string `json:"field_id"`
	CleanedValue string `json:"cleaned_value"`
}

// ResolveResult is the payload returned by POST /intake/resolve.
type ResolveResult struct {
	ResolvedValue    string `json:"resolved_value"`
	ExtractionFailed bool   `json:"extraction_failed"`
}

func (s *Server) normalizeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.normalizeHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.normalizeHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	cleaned, err := s.normalizer.Normalize(r.Context(), req.FieldID, req.RawValue, req.LastSuggestions, req.ProjectContext)
	if err != nil {
		slog.Error("Server.normalizeHandler: normalization failed", "error", err, "fieldID", req.FieldID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to normalize value"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(NormalizeResult{FieldID: req.FieldID, CleanedValue: cleaned}))
}

func (s *Server) resolveHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.resolveHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.resolveHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	resolved := s.resolver.Resolve(r.Context(), req.UserInput, req.SuggestionsText)
	writeJSONResponse(w, http.StatusOK, models.Success(ResolveResult{
		ResolvedValue:    resolved,
		ExtractionFailed: resolved == intake.ExtractionFailedMessage,
	}))
}

func (s *Server) estimateHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.estimateHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	est := s.estimator.Estimate(r.Context(), req.ProjectState)
	writeJSONResponse(w, http.StatusOK, models.Success(est))
}

func (s *Server) decideHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req models.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.decideHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	decision := s.engine.Decide(r.Context(), req.ProjectState, req.LastTurn)
	writeJSONResponse(w, http.StatusOK, models.Success(decision))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("service healthy", nil))
}
