package ingestion

import (
	"fmt"
	"log/slog"

	"github.com/aioracle/aioracle/internal/config"
)

// ConnectorsFromConfig builds the enabled connectors in configuration order.
func ConnectorsFromConfig(cfg config.SourcesConfig, logger *slog.Logger) ([]Connector, error) {
	connectors := make([]Connector, 0, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		switch name {
		case "metaculus":
			connectors = append(connectors, NewMetaculusConnector(ConnectorConfig{
				BaseURL: cfg.MetaculusBaseURL,
				Timeout: cfg.Timeout,
			}, logger))
		case "polymarket":
			connectors = append(connectors, NewPolymarketConnector(ConnectorConfig{
				BaseURL: cfg.PolymarketBaseURL,
				Timeout: cfg.Timeout,
			}, logger))
		case "manifold":
			connectors = append(connectors, NewManifoldConnector(ConnectorConfig{
				BaseURL: cfg.ManifoldBaseURL,
				Timeout: cfg.Timeout,
			}, logger))
		case "file":
			if cfg.FixturePath == "" {
				return nil, fmt.Errorf("file source requires a fixture path")
			}
			connectors = append(connectors, NewFileConnector("", cfg.FixturePath, logger))
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return connectors, nil
}

// NewCollectorFromConfig builds a collector over the enabled connectors.
func NewCollectorFromConfig(cfg config.SourcesConfig, logger *slog.Logger) (*Collector, error) {
	connectors, err := ConnectorsFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewCollector(connectors, cfg.Concurrency, logger), nil
}
