package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aioracle/aioracle/internal/models"
)

// Saver persists a finished prediction.
type Saver interface {
	Save(ctx context.Context, p models.Prediction) (models.PredictionRecord, error)
}

// RunState is the lifecycle state of a tracked run.
type RunState string

const (
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// RunStatus is a snapshot of a tracked run.
type RunStatus struct {
	ID         string                   `json:"id"`
	State      RunState                 `json:"status"`
	Progress   int                      `json:"progress"`
	Message    string                   `json:"message"`
	Prediction *models.PredictionRecord `json:"prediction,omitempty"`
	Error      string                   `json:"error,omitempty"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt *time.Time               `json:"finished_at,omitempty"`
}

const defaultMaxRuns = 100

// Tracker runs predictions, optionally saves them, and remembers the status
// of the most recent runs.
type Tracker struct {
	predictor Predictor
	saver     Saver
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	runs    map[string]*RunStatus
	order   []string
	maxRuns int
}

// NewTracker creates a tracker. A nil saver leaves predictions unsaved.
func NewTracker(p Predictor, saver Saver, logger *slog.Logger) *Tracker {
	return &Tracker{
		predictor: p,
		saver:     saver,
		logger:    logger,
		now:       time.Now,
		runs:      make(map[string]*RunStatus),
		maxRuns:   defaultMaxRuns,
	}
}

// Start launches a run in the background and returns its id. The run is
// detached from ctx cancellation so it outlives the request that started it.
func (t *Tracker) Start(ctx context.Context, forceRefresh bool) string {
	id := t.begin()
	go func() {
		_, _ = t.execute(context.WithoutCancel(ctx), id, forceRefresh, Handlers{})
	}()
	return id
}

// Execute runs a prediction synchronously, saving it when a saver is set.
// The extra handlers observe the run alongside the tracker.
func (t *Tracker) Execute(ctx context.Context, forceRefresh bool, h Handlers) (models.PredictionRecord, error) {
	return t.execute(ctx, t.begin(), forceRefresh, h)
}

// Get returns the status of a run.
func (t *Tracker) Get(id string) (RunStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.runs[id]
	if !ok {
		return RunStatus{}, false
	}
	return *st, true
}

func (t *Tracker) begin() string {
	id := uuid.New().String()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs[id] = &RunStatus{ID: id, State: RunRunning, StartedAt: t.now()}
	t.order = append(t.order, id)
	for len(t.order) > t.maxRuns {
		delete(t.runs, t.order[0])
		t.order = t.order[1:]
	}
	return id
}

func (t *Tracker) execute(ctx context.Context, id string, forceRefresh bool, h Handlers) (models.PredictionRecord, error) {
	logger := t.logger.With("run_id", id)
	logger.Info("prediction run started", "force_refresh", forceRefresh)

	prediction, err := Run(ctx, t.predictor, forceRefresh, Handlers{
		OnProgress: func(p Progress) {
			t.update(id, func(st *RunStatus) {
				st.Progress = p.Percent
				st.Message = p.Message
			})
			h.progress(p)
		},
		OnResult: h.OnResult,
		OnError:  h.OnError,
	})
	if err != nil {
		logger.Error("prediction run failed", "error", err)
		t.finish(id, nil, err)
		return models.PredictionRecord{}, err
	}

	record := models.PredictionRecord{Prediction: prediction}
	if t.saver != nil {
		record, err = t.saver.Save(ctx, prediction)
		if err != nil {
			logger.Error("failed to save prediction", "error", err)
			t.finish(id, nil, err)
			return models.PredictionRecord{}, err
		}
	}

	logger.Info("prediction run finished", "prediction_id", record.ID)
	t.finish(id, &record, nil)
	return record, nil
}

func (t *Tracker) update(id string, fn func(*RunStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.runs[id]; ok {
		fn(st)
	}
}

func (t *Tracker) finish(id string, record *models.PredictionRecord, err error) {
	finished := t.now()
	t.update(id, func(st *RunStatus) {
		st.FinishedAt = &finished
		if err != nil {
			st.State = RunFailed
			st.Error = err.Error()
			st.Progress = 0
			st.Message = ErrorProgress(err).Message
			return
		}
		st.State = RunSucceeded
		st.Prediction = record
	})
}
