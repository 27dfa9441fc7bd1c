package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aioracle/aioracle/internal/auth"
	"github.com/aioracle/aioracle/internal/database"
	"github.com/aioracle/aioracle/internal/models"
	"github.com/aioracle/aioracle/internal/worker"
)

// HistoryResponse lists stored predictions, newest first.
type HistoryResponse struct {
	Predictions []models.PredictionRecord `json:"predictions"`
	Count       int                       `json:"count"`
}

// RunAccepted is returned for asynchronous prediction runs.
type RunAccepted struct {
	RunID     string `json:"run_id"`
	StatusURL string `json:"status_url"`
}

// ListPredictionsHandler handles GET /api/predictions
func (h *Handler) ListPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.deps.Store.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load prediction history", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load prediction history")
		return
	}

	h.writeJSON(w, http.StatusOK, HistoryResponse{Predictions: records, Count: len(records)})
}

// LatestPredictionHandler handles GET /api/predictions/latest
func (h *Handler) LatestPredictionHandler(w http.ResponseWriter, r *http.Request) {
	record, err := h.deps.Store.Latest(r.Context())
	if errors.Is(err, database.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "no predictions recorded yet")
		return
	}
	if err != nil {
		h.logger.Error("failed to load latest prediction", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load latest prediction")
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

// CreatePredictionHandler handles POST /api/predictions. With async=true the
// run continues in the background and its status is served at /api/runs/{id}.
func (h *Handler) CreatePredictionHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	force := query.Get("force") == "true"

	if query.Get("async") == "true" {
		id := h.deps.Runs.Start(r.Context(), force)
		h.writeJSON(w, http.StatusAccepted, RunAccepted{RunID: id, StatusURL: "/api/runs/" + id})
		return
	}

	record, err := h.deps.Runs.Execute(r.Context(), force, worker.Handlers{})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, record)
}

// GetRunHandler handles GET /api/runs/{id}
func (h *Handler) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status, ok := h.deps.Runs.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	h.writeJSON(w, http.StatusOK, status)
}

// AnalysisHandler handles GET /api/analysis. Forcing a refresh hits every
// provider, so it requires an admin token.
func (h *Handler) AnalysisHandler(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if force {
		if _, err := auth.Authorize(r, h.deps.Auth.JWTSecret); err != nil {
			h.writeError(w, http.StatusUnauthorized, "force refresh requires an admin token")
			return
		}
	}

	analysis, err := h.deps.Engine.DetailedAnalysis(r.Context(), force)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, analysis)
}
