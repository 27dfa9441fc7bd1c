// Package app assembles the prediction engine, its sources and its store from
// configuration. The server and the CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aioracle/aioracle/internal/config"
	"github.com/aioracle/aioracle/internal/database"
	"github.com/aioracle/aioracle/internal/forecaster"
	"github.com/aioracle/aioracle/internal/ingestion"
	"github.com/aioracle/aioracle/internal/worker"
)

// Observer receives both engine and per-source outcomes.
type Observer interface {
	forecaster.Observer
	ingestion.Observer
}

// App is a fully wired prediction service.
type App struct {
	Collector   *ingestion.Collector
	Engine      *forecaster.Engine
	DB          *database.DB
	Predictions *database.PredictionRepository
	Tracker     *worker.Tracker
}

// Options tune Build.
type Options struct {
	Observer Observer // nil disables metrics
	NoSave   bool     // run predictions without persisting them
}

// Build connects the database, runs migrations and wires the engine.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	collector, err := ingestion.NewCollectorFromConfig(cfg.Sources, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure sources: %w", err)
	}

	var engineOpts []forecaster.Option
	if opts.Observer != nil {
		collector.SetObserver(opts.Observer)
		engineOpts = append(engineOpts, forecaster.WithObserver(opts.Observer))
	}

	engine := forecaster.NewEngine(collector.Fetch, forecaster.Config{
		CacheTTL:      cfg.Engine.CacheTTL,
		MinDataPoints: cfg.Engine.MinDataPoints,
	}, logger, engineOpts...)

	dbCfg := database.DefaultConfig()
	dbCfg.Driver = cfg.Database.Driver
	dbCfg.Path = cfg.Database.Path
	dbCfg.URL = cfg.Database.URL

	target := dbCfg.Path
	if dbCfg.Driver == database.DriverPostgres {
		target = database.RedactURL(dbCfg.URL)
	}
	logger.Info("connecting to database", "driver", dbCfg.Driver, "target", target)
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	repo := database.NewPredictionRepository(db)

	var saver worker.Saver = repo
	if opts.NoSave {
		saver = nil
	}

	return &App{
		Collector:   collector,
		Engine:      engine,
		DB:          db,
		Predictions: repo,
		Tracker:     worker.NewTracker(engine, saver, logger),
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.DB.Close()
}
