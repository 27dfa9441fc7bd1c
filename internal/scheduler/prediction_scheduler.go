package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aioracle/aioracle/internal/models"
	"github.com/aioracle/aioracle/internal/worker"
)

// Executor runs and saves one prediction.
type Executor interface {
	Execute(ctx context.Context, forceRefresh bool, h worker.Handlers) (models.PredictionRecord, error)
}

// PredictionScheduler generates and saves a fresh prediction on a fixed interval
type PredictionScheduler struct {
	executor Executor
	interval time.Duration
	logger   *slog.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPredictionScheduler creates a new prediction scheduler
func NewPredictionScheduler(executor Executor, interval time.Duration, logger *slog.Logger) *PredictionScheduler {
	return &PredictionScheduler{
		executor: executor,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start runs the scheduler loop until Stop is called or ctx is cancelled.
func (s *PredictionScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting prediction scheduler", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on start
	s.runPrediction(ctx)

	for {
		select {
		case <-ticker.C:
			s.runPrediction(ctx)
		case <-s.stopChan:
			s.logger.Info("Prediction scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Prediction scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler. It is safe to call more than once.
func (s *PredictionScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *PredictionScheduler) runPrediction(ctx context.Context) {
	record, err := s.executor.Execute(ctx, true, worker.Handlers{})
	if err != nil {
		s.logger.Error("Scheduled prediction failed", "error", err)
		return
	}

	s.logger.Info("Scheduled prediction saved",
		"prediction_id", record.ID,
		"agi_date", record.AGIDate,
		"singularity_date", record.SingularityDate,
	)
}
