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
	PolymarketName           = "Polymarket"
	DefaultPolymarketBaseURL = "https://gamma-api.polymarket.com"

	polymarketMinVolume = 1000
)

var polymarketSearchTerms = []string{"AGI", "artificial intelligence", "AI", "GPT", "superintelligence"}

// PolymarketConnector reads AI markets from the Polymarket gamma API. The
// milestone year comes from the question text and trading volume stands in
// for the forecaster count.
type PolymarketConnector struct {
	*BaseConnector
	client *http.Client
	logger *slog.Logger
}

// NewPolymarketConnector creates a Polymarket connector.
func NewPolymarketConnector(cfg ConnectorConfig, logger *slog.Logger) *PolymarketConnector {
	if cfg.Name == "" {
		cfg.Name = PolymarketName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPolymarketBaseURL
	}
	return &PolymarketConnector{
		BaseConnector: NewBaseConnector(cfg),
		client:        newHTTPClient(cfg),
		logger:        logger.With("connector", cfg.Name),
	}
}

// Fetch queries every search term and keeps markets naming a year with enough volume.
func (c *PolymarketConnector) Fetch(ctx context.Context) []models.ForecastPoint {
	start := time.Now()
	var (
		results  []models.ForecastPoint
		errCount int
		lastErr  error
	)

	for _, term := range polymarketSearchTerms {
		params := url.Values{}
		params.Set("_q", term)
		params.Set("_limit", "20")

		data, err := getJSON(ctx, c.client, c.Config.BaseURL, "/markets", params)
		if err != nil {
			c.logger.Warn("polymarket search failed", "term", term, "error", err)
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
	c.logger.Info("fetched polymarket forecasts", "count", len(results), "errors", errCount)
	return results
}

func (c *PolymarketConnector) parseMarket(market gjson.Result) (models.ForecastPoint, bool) {
	if !market.IsObject() {
		return models.ForecastPoint{}, false
	}

	question := market.Get("question").String()
	year, ok := yearInQuestion(question)
	if !ok {
		return models.ForecastPoint{}, false
	}

	// volume is sometimes encoded as a string; gjson parses both
	volume := market.Get("volume").Float()
	if volume < polymarketMinVolume {
		return models.ForecastPoint{}, false
	}

	return models.ForecastPoint{
		Source:         c.Name(),
		Question:       truncateRunes(question, 100),
		MedianYear:     float64(year),
		NumForecasters: int(volume / 10),
		URL:            market.Get("url").String(),
	}, true
}
