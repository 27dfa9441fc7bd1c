package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

// Connector is a forecast source. Fetch never fails: any network, status or
// parse problem yields an empty slice and is recorded in the connector status.
type Connector interface {
	// Name returns the provider identifier, e.g. "Metaculus".
	Name() string

	// Fetch retrieves the provider's current AI-timeline forecasts.
	Fetch(ctx context.Context) []models.ForecastPoint
}

// StatusReporter is implemented by connectors that track fetch health.
type StatusReporter interface {
	Status() ConnectorStatus
}

// ConnectorConfig holds common configuration for HTTP connectors.
type ConnectorConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration
}

// ConnectorStatus represents the current state of a connector.
type ConnectorStatus struct {
	Name           string        `json:"name"`
	Healthy        bool          `json:"healthy"`
	LastFetch      time.Time     `json:"last_fetch"`
	LastError      string        `json:"last_error,omitempty"`
	LastCount      int           `json:"last_count"`
	TotalFetched   int64         `json:"total_fetched"`
	TotalErrors    int64         `json:"total_errors"`
	AverageLatency time.Duration `json:"-"`
	AverageMillis  int64         `json:"average_latency_ms"`
}

// BaseConnector provides status bookkeeping shared by connector implementations.
type BaseConnector struct {
	Config ConnectorConfig

	mu     sync.Mutex
	status ConnectorStatus
}

// NewBaseConnector creates a new base connector with the given configuration.
func NewBaseConnector(cfg ConnectorConfig) *BaseConnector {
	return &BaseConnector{
		Config: cfg,
		status: ConnectorStatus{Name: cfg.Name, Healthy: true},
	}
}

// Name returns the configured provider name.
func (b *BaseConnector) Name() string {
	return b.Config.Name
}

// RecordFetch updates the status after a fetch. errCount counts the failed
// requests within the fetch; lastErr is the most recent of them.
func (b *BaseConnector) RecordFetch(count, errCount int, duration time.Duration, lastErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status.LastFetch = time.Now()
	b.status.LastCount = count
	b.status.TotalFetched += int64(count)
	b.status.TotalErrors += int64(errCount)

	if lastErr != nil && count == 0 {
		b.status.Healthy = false
		b.status.LastError = lastErr.Error()
	} else {
		b.status.Healthy = true
		b.status.LastError = ""
	}

	// simple moving average
	if b.status.AverageLatency == 0 {
		b.status.AverageLatency = duration
	} else {
		b.status.AverageLatency = (b.status.AverageLatency + duration) / 2
	}
	b.status.AverageMillis = b.status.AverageLatency.Milliseconds()
}

// Status returns a snapshot of the connector status.
func (b *BaseConnector) Status() ConnectorStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}
