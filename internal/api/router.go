package api

import (
	"net/http"

	"github.com/aioracle/aioracle/internal/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, deps Dependencies) {
	handler := NewHandler(deps)
	authHandler := NewAuthHandler(deps.Auth, deps.Logger)

	admin := func(fn http.HandlerFunc) http.Handler {
		return auth.AuthMiddleware(deps.Auth)(fn)
	}

	mux.HandleFunc("GET /healthz", handler.HealthHandler)
	mux.HandleFunc("GET /api/info", handler.InfoHandler)
	mux.HandleFunc("GET /api/sources", handler.SourcesHandler)

	// Authentication routes (public)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/validate", admin(authHandler.ValidateToken))

	// Prediction routes (public for reading)
	mux.HandleFunc("GET /api/predictions", handler.ListPredictionsHandler)
	mux.HandleFunc("GET /api/predictions/latest", handler.LatestPredictionHandler)
	mux.HandleFunc("GET /api/runs/{id}", handler.GetRunHandler)
	mux.HandleFunc("GET /api/analysis", handler.AnalysisHandler)

	// Admin routes
	mux.Handle("POST /api/predictions", admin(handler.CreatePredictionHandler))
	mux.Handle("DELETE /api/cache", admin(handler.ClearCacheHandler))
}
