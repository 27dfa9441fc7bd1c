package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

// Observer receives per-connector fetch outcomes, typically for metrics.
type Observer interface {
	ObserveConnector(name string, points int, duration time.Duration)
}

// Collector fans a fetch out to every connector and merges the results in
// connector order, then removes duplicate questions.
type Collector struct {
	connectors  []Connector
	concurrency int
	observer    Observer
	logger      *slog.Logger
}

// NewCollector creates a collector. Concurrency below 1 fetches sequentially.
func NewCollector(connectors []Connector, concurrency int, logger *slog.Logger) *Collector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{
		connectors:  connectors,
		concurrency: concurrency,
		logger:      logger,
	}
}

// SetObserver registers an observer for connector outcomes.
func (c *Collector) SetObserver(o Observer) {
	c.observer = o
}

// Connectors returns the configured connectors.
func (c *Collector) Connectors() []Connector {
	return c.connectors
}

// Fetch runs all connectors. A failing or panicking connector contributes no
// points; the only error is a cancelled context.
func (c *Collector) Fetch(ctx context.Context) ([]models.ForecastPoint, error) {
	results := make([][]models.ForecastPoint, len(c.connectors))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.concurrency)

	for i, connector := range c.connectors {
		wg.Add(1)

		go func(i int, conn Connector) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = c.fetchOne(ctx, conn)
		}(i, connector)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch cancelled: %w", err)
	}

	var all []models.ForecastPoint
	for _, points := range results {
		all = append(all, points...)
	}

	unique := Deduplicate(all)
	c.logger.Info("collected forecasts",
		"connectors", len(c.connectors),
		"raw", len(all),
		"unique", len(unique))

	return unique, nil
}

// Statuses returns the status of every connector that reports one.
func (c *Collector) Statuses() []ConnectorStatus {
	statuses := make([]ConnectorStatus, 0, len(c.connectors))
	for _, conn := range c.connectors {
		if r, ok := conn.(StatusReporter); ok {
			statuses = append(statuses, r.Status())
		}
	}
	return statuses
}

func (c *Collector) fetchOne(ctx context.Context, conn Connector) (points []models.ForecastPoint) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in connector fetch", "connector", conn.Name(), "panic", r)
			points = nil
		}
		if c.observer != nil {
			c.observer.ObserveConnector(conn.Name(), len(points), time.Since(start))
		}
	}()

	return conn.Fetch(ctx)
}
