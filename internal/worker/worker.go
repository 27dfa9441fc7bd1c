// Package worker runs the prediction engine off the caller's goroutine and
// reports progress, result and failure through callbacks.
package worker

import (
	"context"
	"fmt"

	"github.com/aioracle/aioracle/internal/models"
)

// Predictor is the slice of the engine the worker drives.
type Predictor interface {
	FetchData(ctx context.Context, forceRefresh bool) ([]models.ForecastPoint, error)
	PredictFrom(raw []models.ForecastPoint) (models.Prediction, error)
}

// Progress is a single progress report.
type Progress struct {
	Percent int    `json:"progress"`
	Message string `json:"message"`
}

// Progress stages reported during a run.
var (
	StageConnecting  = Progress{Percent: 5, Message: "Connecting to prediction markets..."}
	StageFetching    = Progress{Percent: 15, Message: "Fetching forecasts from sources..."}
	StageValidating  = Progress{Percent: 55, Message: "Validating and classifying forecasts..."}
	StageAggregating = Progress{Percent: 85, Message: "Aggregating forecasts (weighted analysis)..."}
	StageDone        = Progress{Percent: 100, Message: "Done"}
)

// ErrorProgress is the progress report emitted when a run fails.
func ErrorProgress(err error) Progress {
	return Progress{Percent: 0, Message: "Error: " + err.Error()}
}

// Handlers receive run events. All callbacks run on the goroutine that called
// Run, one at a time. Nil callbacks are skipped.
type Handlers struct {
	OnProgress func(Progress)
	OnResult   func(models.Prediction)
	OnError    func(error)
}

func (h Handlers) progress(p Progress) {
	if h.OnProgress != nil {
		h.OnProgress(p)
	}
}

func (h Handlers) result(p models.Prediction) {
	if h.OnResult != nil {
		h.OnResult(p)
	}
}

func (h Handlers) fail(err error) {
	h.progress(ErrorProgress(err))
	if h.OnError != nil {
		h.OnError(err)
	}
}

type event struct {
	progress   *Progress
	prediction models.Prediction
	err        error
	done       bool
}

// Run executes one prediction and blocks until it finishes or ctx is done.
// The engine keeps running after cancellation; its late result is discarded.
func Run(ctx context.Context, p Predictor, forceRefresh bool, h Handlers) (models.Prediction, error) {
	events := make(chan event, 8)
	go produce(ctx, p, forceRefresh, events)

	for {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			h.fail(err)
			return models.Prediction{}, err
		case ev := <-events:
			switch {
			case ev.progress != nil:
				h.progress(*ev.progress)
			case ev.err != nil:
				h.fail(ev.err)
				return models.Prediction{}, ev.err
			case ev.done:
				if err := ctx.Err(); err != nil {
					h.fail(err)
					return models.Prediction{}, err
				}
				h.progress(StageDone)
				h.result(ev.prediction)
				return ev.prediction, nil
			}
		}
	}
}

// Go starts Run on a new goroutine. The returned channel closes when the run
// has delivered its last callback.
func Go(ctx context.Context, p Predictor, forceRefresh bool, h Handlers) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Run(ctx, p, forceRefresh, h)
	}()
	return done
}

func produce(ctx context.Context, p Predictor, forceRefresh bool, events chan<- event) {
	defer func() {
		if r := recover(); r != nil {
			events <- event{err: fmt.Errorf("prediction run panicked: %v", r)}
		}
	}()

	stage := func(s Progress) {
		events <- event{progress: &s}
	}

	stage(StageConnecting)
	stage(StageFetching)

	raw, err := p.FetchData(ctx, forceRefresh)
	if err != nil {
		events <- event{err: err}
		return
	}

	stage(StageValidating)
	stage(StageAggregating)

	prediction, err := p.PredictFrom(raw)
	if err != nil {
		events <- event{err: err}
		return
	}

	events <- event{prediction: prediction, done: true}
}
