package ingestion

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aioracle/aioracle/internal/models"
	"github.com/tidwall/gjson"
)

const (
	ManifoldName           = "Manifold"
	DefaultManifoldBaseURL = "https://api.manifold.markets/v0"

	manifoldMinBettors = 5
)

var manifoldSearchTerms = []string{"AGI", "superintelligence", "transformative AI", "AI timeline"}

// ManifoldConnector reads AI markets from Manifold Markets, using unique
// bettors as the forecaster count.
type ManifoldConnector struct {
	*BaseConnector
	client *http.Client
	logger *slog.Logger
}

// NewManifoldConnector creates a Manifold connector.
func NewManifoldConnector(cfg ConnectorConfig, logger *slog.Logger) *ManifoldConnector {
	if cfg.Name == "" {
		cfg.Name = ManifoldName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultManifoldBaseURL
	}
	return &ManifoldConnector{
		BaseConnector: NewBaseConnector(cfg),
		client:        newHTTPClient(cfg),
		logger:        logger.With("connector", cfg.Name),
	}
}

// Fetch queries every search term and keeps active markets naming a year.
func (c *ManifoldConnector) Fetch(ctx context.Context) []models.ForecastPoint {
	start := time.Now()
	var (
		results  []models.ForecastPoint
		errCount int
		lastErr  error
	)

	for _, term := range manifoldSearchTerms {
		params := url.Values{}
		params.Set("term", term)
		params.Set("limit", "20")

		data, err := getJSON(ctx, c.client, c.Config.BaseURL, "/search-markets", params)
		if err != nil {
			c.logger.Warn("manifold search failed", "term", term, "error", err)
			errCount++
			lastErr = err
			continue
		}

		for _, market := range data.Array() {
			if point, ok := c.parseMarket(market); ok {
				results = append(results, point)
			}
		}
	}

	c.RecordFetch(len(results), errCount, time.Since(start), lastErr)
	c.logger.Info("fetched manifold forecasts", "count", len(results), "errors", errCount)
	return results
}

func (c *ManifoldConnector) parseMarket(market gjson.Result) (models.ForecastPoint, bool) {
	if !market.IsObject() {
		return models.ForecastPoint{}, false
	}

	question := market.Get("question").String()
	year, ok := yearInQuestion(question)
	if !ok {
		return models.ForecastPoint{}, false
	}

	bettors := int(market.Get("uniqueBettorCount").Int())
	if bettors < manifoldMinBettors {
		return models.ForecastPoint{}, false
	}

	return models.ForecastPoint{
		Source:         c.Name(),
		Question:       truncateRunes(question, 100),
		MedianYear:     float64(year),
		NumForecasters: bettors,
		URL:            market.Get("url").String(),
	}, true
}
