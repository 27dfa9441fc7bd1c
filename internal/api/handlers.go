package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aioracle/aioracle/internal/auth"
	"github.com/aioracle/aioracle/internal/forecaster"
	"github.com/aioracle/aioracle/internal/ingestion"
	"github.com/aioracle/aioracle/internal/models"
	"github.com/aioracle/aioracle/internal/worker"
)

// Analyzer produces detailed analyses and owns the forecast cache.
type Analyzer interface {
	DetailedAnalysis(ctx context.Context, forceRefresh bool) (models.Analysis, error)
	ClearCache()
}

// PredictionStore reads the prediction log.
type PredictionStore interface {
	History(ctx context.Context, limit int) ([]models.PredictionRecord, error)
	Latest(ctx context.Context) (models.PredictionRecord, error)
}

// RunTracker executes predictions and reports run status.
type RunTracker interface {
	Start(ctx context.Context, forceRefresh bool) string
	Execute(ctx context.Context, forceRefresh bool, h worker.Handlers) (models.PredictionRecord, error)
	Get(id string) (worker.RunStatus, bool)
}

// SourceLister reports connector health.
type SourceLister interface {
	Statuses() []ingestion.ConnectorStatus
}

// DatabaseChecker reports database reachability and pool usage.
type DatabaseChecker interface {
	Health(ctx context.Context) error
	PoolStats() map[string]interface{}
}

// Dependencies are the collaborators behind the HTTP API.
type Dependencies struct {
	Engine  Analyzer
	Store   PredictionStore
	Runs    RunTracker
	Sources SourceLister
	DB      DatabaseChecker
	Auth    auth.Config
	Version string
	Logger  *slog.Logger
}

// Handler serves the prediction API.
type Handler struct {
	deps      Dependencies
	logger    *slog.Logger
	startTime time.Time
}

// NewHandler creates a handler around deps.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		deps:      deps,
		logger:    deps.Logger,
		startTime: time.Now(),
	}
}

// InfoResponse describes the running service.
type InfoResponse struct {
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Sources       []string `json:"sources"`
	LoginEnabled  bool     `json:"login_enabled"`

	Database map[string]interface{} `json:"database,omitempty"`
}

// HealthHandler handles GET /healthz
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB != nil {
		if err := h.deps.DB.Health(r.Context()); err != nil {
			h.logger.Error("database health check failed", "error", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": "database unreachable"})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InfoHandler handles GET /api/info
func (h *Handler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	statuses := h.deps.Sources.Statuses()
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, st.Name)
	}

	info := InfoResponse{
		Name:          "aioracle",
		Version:       h.deps.Version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Sources:       names,
		LoginEnabled:  h.deps.Auth.LoginEnabled(),
	}
	if h.deps.DB != nil {
		info.Database = h.deps.DB.PoolStats()
	}
	h.writeJSON(w, http.StatusOK, info)
}

// SourcesHandler handles GET /api/sources
func (h *Handler) SourcesHandler(w http.ResponseWriter, r *http.Request) {
	statuses := h.deps.Sources.Statuses()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": statuses,
		"count":   len(statuses),
	})
}

// ClearCacheHandler handles DELETE /api/cache
func (h *Handler) ClearCacheHandler(w http.ResponseWriter, r *http.Request) {
	h.deps.Engine.ClearCache()
	h.logger.Info("forecast cache cleared", "ip", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	writeJSON(w, h.logger, status, v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine failures onto HTTP statuses.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, forecaster.ErrDataFetch):
		status = http.StatusBadGateway
	case errors.Is(err, forecaster.ErrDataValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeError(w, status, err.Error())
}
