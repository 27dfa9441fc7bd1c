package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aioracle/aioracle/internal/forecaster"
	"github.com/aioracle/aioracle/internal/models"
)

// ForecastCollector records engine and connector outcomes. It satisfies both
// forecaster.Observer and ingestion.Observer.
type ForecastCollector struct {
	fetchTotal          *prometheus.CounterVec
	forecastPoints      prometheus.Gauge
	predictionsTotal    prometheus.Counter
	orderingAdjustments prometheus.Counter
	milestoneYear       *prometheus.GaugeVec
	sourcePoints        *prometheus.GaugeVec
	sourceDuration      *prometheus.HistogramVec
}

// NewForecastCollector registers the forecast metrics on reg.
func NewForecastCollector(reg prometheus.Registerer) (*ForecastCollector, error) {
	c := &ForecastCollector{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "fetch_total",
			Help:      "Forecast data requests by outcome (hit, miss, error).",
		}, []string{"outcome"}),
		forecastPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "forecast_points",
			Help:      "Number of forecast points returned by the last successful fetch.",
		}),
		predictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "predictions_total",
			Help:      "Total number of predictions generated.",
		}),
		orderingAdjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "ordering_adjustments_total",
			Help:      "Predictions whose milestone years were clamped into AGI < ASI < Singularity order.",
		}),
		milestoneYear: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "milestone_year",
			Help:      "Fractional year of the latest prediction per milestone.",
		}, []string{"milestone"}),
		sourcePoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "points",
			Help:      "Forecast points returned by the last fetch per source.",
		}, []string{"source"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Latency distribution of source fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"source"}),
	}

	collectors := []prometheus.Collector{
		c.fetchTotal,
		c.forecastPoints,
		c.predictionsTotal,
		c.orderingAdjustments,
		c.milestoneYear,
		c.sourcePoints,
		c.sourceDuration,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveFetch implements forecaster.Observer.
func (c *ForecastCollector) ObserveFetch(cacheHit bool, points int, err error) {
	switch {
	case err != nil:
		c.fetchTotal.WithLabelValues("error").Inc()
		return
	case cacheHit:
		c.fetchTotal.WithLabelValues("hit").Inc()
	default:
		c.fetchTotal.WithLabelValues("miss").Inc()
	}
	c.forecastPoints.Set(float64(points))
}

// ObservePrediction implements forecaster.Observer.
func (c *ForecastCollector) ObservePrediction(timeline forecaster.Timeline, adjusted bool) {
	c.predictionsTotal.Inc()
	if adjusted {
		c.orderingAdjustments.Inc()
	}
	for _, m := range models.Milestones {
		c.milestoneYear.WithLabelValues(string(m)).Set(timeline.Year(m))
	}
}

// ObserveConnector implements ingestion.Observer.
func (c *ForecastCollector) ObserveConnector(name string, points int, duration time.Duration) {
	c.sourcePoints.WithLabelValues(name).Set(float64(points))
	c.sourceDuration.WithLabelValues(name).Observe(duration.Seconds())
}
