package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aioracle/aioracle/internal/api"
	"github.com/aioracle/aioracle/internal/app"
	"github.com/aioracle/aioracle/internal/auth"
	"github.com/aioracle/aioracle/internal/config"
	"github.com/aioracle/aioracle/internal/logging"
	"github.com/aioracle/aioracle/internal/metrics"
	"github.com/aioracle/aioracle/internal/scheduler"
	"github.com/aioracle/aioracle/internal/server"
	"github.com/aioracle/aioracle/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting aioracle", "version", version.Version, "sources", cfg.Sources.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics, err := metrics.NewHTTPCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	forecastMetrics, err := metrics.NewForecastCollector(httpMetrics.Registry())
	if err != nil {
		logger.Error("failed to init forecast metrics", "error", err)
		os.Exit(1)
	}

	a, err := app.Build(ctx, cfg, logger, app.Options{Observer: forecastMetrics})
	if err != nil {
		logger.Error("failed to initialize prediction service", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	authConfig, err := auth.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load auth config", "error", err)
		os.Exit(1)
	}
	if !authConfig.LoginEnabled() {
		logger.Warn("ADMIN_PASSWORD and ADMIN_PASSWORD_HASH not set, admin routes are unreachable")
	}
	logger.Info("auth configured", "jwt_secret_set", os.Getenv("ADMIN_JWT_SECRET") != "")

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", httpMetrics.Handler())
	api.SetupRoutes(mux, api.Dependencies{
		Engine:  a.Engine,
		Store:   a.Predictions,
		Runs:    a.Tracker,
		Sources: a.Collector,
		DB:      a.DB,
		Auth:    authConfig,
		Version: version.Version,
		Logger:  logger,
	})

	handler := server.CORSMiddleware(server.LoggingMiddleware(logger, httpMetrics.InstrumentHandler(mux)))
	srv := server.New(cfg.Server, logger, handler)

	if cfg.Scheduler.Interval > 0 {
		logger.Info("starting prediction scheduler")
		predictionScheduler := scheduler.NewPredictionScheduler(a.Tracker, cfg.Scheduler.Interval, logger)
		go predictionScheduler.Start(ctx)
		defer predictionScheduler.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
