package forecaster

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

// Config controls engine caching and validation.
type Config struct {
	CacheTTL      time.Duration // 0 disables caching
	MinDataPoints int           // validation floor, default 1
}

// Observer receives engine outcomes, typically for metrics.
type Observer interface {
	ObserveFetch(cacheHit bool, points int, err error)
	ObservePrediction(timeline Timeline, adjusted bool)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(bool, int, error)    {}
func (nopObserver) ObservePrediction(Timeline, bool) {}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for the cache, timestamps and the empty-bucket horizon.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithObserver registers an observer for fetch and prediction outcomes.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// Engine turns raw forecasts from a pluggable fetch strategy into consensus predictions.
type Engine struct {
	fetch     FetchFunc
	cache     *Cache
	validator *Validator
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine creates an engine around a fetch strategy.
func NewEngine(fetch FetchFunc, cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		fetch:    fetch,
		observer: nopObserver{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cache = NewCache(cfg.CacheTTL, e.now, logger)
	e.validator = NewValidator(cfg.MinDataPoints, logger)

	logger.Debug("prediction engine initialized",
		"cache_ttl", cfg.CacheTTL,
		"min_data_points", e.validator.MinDataPoints)

	return e
}

// FetchData returns forecast data, from the cache when fresh unless forceRefresh is set.
func (e *Engine) FetchData(ctx context.Context, forceRefresh bool) ([]models.ForecastPoint, error) {
	points, hit, err := e.cache.Fetch(ctx, forceRefresh, e.fetch)
	e.observer.ObserveFetch(hit, len(points), err)
	if err != nil {
		return nil, err
	}
	return append([]models.ForecastPoint(nil), points...), nil
}

// GeneratePrediction runs fetch, validate, classify, aggregate, order-fix and scoring.
func (e *Engine) GeneratePrediction(ctx context.Context, forceRefresh bool) (models.Prediction, error) {
	e.logger.Info("generating new prediction", "force_refresh", forceRefresh)

	raw, err := e.FetchData(ctx, forceRefresh)
	if err != nil {
		return models.Prediction{}, err
	}
	return e.PredictFrom(raw)
}

// PredictFrom builds a prediction from an already fetched forecast set.
func (e *Engine) PredictFrom(raw []models.ForecastPoint) (models.Prediction, error) {
	points, err := e.validator.Validate(raw)
	if err != nil {
		return models.Prediction{}, err
	}
	return e.predict(points), nil
}

// DetailedAnalysis returns the prediction together with per-milestone metrics
// and the validated forecasts it was computed from. Metrics describe the
// classified buckets before any fallback is applied.
func (e *Engine) DetailedAnalysis(ctx context.Context, forceRefresh bool) (models.Analysis, error) {
	raw, err := e.FetchData(ctx, forceRefresh)
	if err != nil {
		return models.Analysis{}, err
	}

	points, err := e.validator.Validate(raw)
	if err != nil {
		return models.Analysis{}, err
	}

	buckets := Classify(points)
	return models.Analysis{
		Prediction:         e.predict(points),
		TotalDataPoints:    len(points),
		Sources:            Sources(points),
		AGIMetrics:         CalculateMetrics(buckets.AGI),
		ASIMetrics:         CalculateMetrics(buckets.ASI),
		SingularityMetrics: CalculateMetrics(buckets.Singularity),
		RawForecasts:       points,
	}, nil
}

// ClearCache drops any cached forecast data.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

func (e *Engine) predict(points []models.ForecastPoint) models.Prediction {
	now := e.now()
	classified := Classify(points)
	buckets := classified.WithFallbacks(points)

	e.logger.Debug("classified forecasts",
		"agi", len(classified.AGI),
		"asi", len(classified.ASI),
		"singularity", len(classified.Singularity))

	var raw Timeline
	for _, m := range models.Milestones {
		raw.set(m, Aggregate(buckets.Get(m), now))
	}
	timeline, adjusted := raw.Ordered()
	if adjusted {
		e.logger.Debug("adjusted milestone ordering",
			"asi_before", raw.ASI, "asi_after", timeline.ASI,
			"singularity_before", raw.Singularity, "singularity_after", timeline.Singularity)
	}
	e.observer.ObservePrediction(timeline, adjusted)

	agiProb := Probability(CalculateMetrics(buckets.AGI))
	singProb := Probability(CalculateMetrics(buckets.Singularity))

	prediction := models.Prediction{
		Timestamp:       now.UTC().Format(models.TimestampLayout),
		AGIDate:         YearToDate(timeline.AGI),
		AGIType:         DetermineConsensus(buckets.AGI).Label(),
		AGIProb:         round1(agiProb),
		ASIDate:         YearToDate(timeline.ASI),
		ASIContext:      models.TakeoffFromGap(timeline.ASI - timeline.AGI).Label(),
		SingularityDate: YearToDate(timeline.Singularity),
		SingularityProb: round1(singProb),
	}

	e.logger.Info("prediction generated",
		"agi_date", prediction.AGIDate,
		"agi_prob", prediction.AGIProb,
		"asi_date", prediction.ASIDate,
		"singularity_date", prediction.SingularityDate)

	return prediction
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
