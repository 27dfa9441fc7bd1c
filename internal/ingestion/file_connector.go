package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

// FileConnector serves forecasts from a JSON file holding an array of forecast
// points. It gives the engine a deterministic offline source.
type FileConnector struct {
	*BaseConnector
	path   string
	logger *slog.Logger
}

// NewFileConnector creates a connector that reads path on every fetch.
func NewFileConnector(name, path string, logger *slog.Logger) *FileConnector {
	if name == "" {
		name = "Fixture"
	}
	return &FileConnector{
		BaseConnector: NewBaseConnector(ConnectorConfig{Name: name}),
		path:          path,
		logger:        logger.With("connector", name),
	}
}

// Fetch loads the file. Points without a source are attributed to the connector.
func (c *FileConnector) Fetch(ctx context.Context) []models.ForecastPoint {
	start := time.Now()

	points, err := c.load()
	if err != nil {
		c.logger.Error("failed to load forecast fixture", "path", c.path, "error", err)
		c.RecordFetch(0, 1, time.Since(start), err)
		return nil
	}

	for i := range points {
		if points[i].Source == "" {
			points[i].Source = c.Name()
		}
	}

	c.RecordFetch(len(points), 0, time.Since(start), nil)
	c.logger.Info("loaded forecast fixture", "path", c.path, "count", len(points))
	return points
}

func (c *FileConnector) load() ([]models.ForecastPoint, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var points []models.ForecastPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return points, nil
}
