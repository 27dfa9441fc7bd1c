package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aioracle/aioracle/internal/models"
	"github.com/tidwall/gjson"
)

const (
	MetaculusName           = "Metaculus"
	DefaultMetaculusBaseURL = "https://www.metaculus.com/api2"

	metaculusSearchLimit = 10
)

var metaculusSearchTerms = []string{
	"AGI",
	"artificial general intelligence",
	"transformative AI",
	"superintelligence",
	"human-level AI",
	"AI takeover",
	"AI singularity",
}

// MetaculusConnector searches Metaculus for open AI-timeline questions and
// reads the community median from each question's detail.
type MetaculusConnector struct {
	*BaseConnector
	client *http.Client
	logger *slog.Logger
}

// NewMetaculusConnector creates a Metaculus connector.
func NewMetaculusConnector(cfg ConnectorConfig, logger *slog.Logger) *MetaculusConnector {
	if cfg.Name == "" {
		cfg.Name = MetaculusName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMetaculusBaseURL
	}
	return &MetaculusConnector{
		BaseConnector: NewBaseConnector(cfg),
		client:        newHTTPClient(cfg),
		logger:        logger.With("connector", cfg.Name),
	}
}

// Fetch searches every term and returns one point per distinct question with a usable median.
func (c *MetaculusConnector) Fetch(ctx context.Context) []models.ForecastPoint {
	start := time.Now()
	var (
		results  []models.ForecastPoint
		errCount int
		lastErr  error
	)
	seen := make(map[int64]bool)

	for _, term := range metaculusSearchTerms {
		questions, err := c.search(ctx, term)
		if err != nil {
			c.logger.Warn("metaculus search failed", "term", term, "error", err)
			errCount++
			lastErr = err
			continue
		}

		for _, q := range questions {
			id := q.Get("id").Int()
			if id == 0 || seen[id] {
				continue
			}
			seen[id] = true

			detail, err := getJSON(ctx, c.client, c.Config.BaseURL, fmt.Sprintf("/questions/%d/", id), nil)
			if err != nil {
				c.logger.Debug("metaculus question detail failed", "id", id, "error", err)
				errCount++
				lastErr = err
				continue
			}

			point, ok := c.parseQuestion(id, detail)
			if !ok {
				continue
			}
			results = append(results, point)
		}
	}

	c.RecordFetch(len(results), errCount, time.Since(start), lastErr)
	c.logger.Info("fetched metaculus forecasts", "count", len(results), "errors", errCount)
	return results
}

func (c *MetaculusConnector) search(ctx context.Context, term string) ([]gjson.Result, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("status", "open")
	params.Set("type", "forecast")
	params.Set("limit", strconv.Itoa(metaculusSearchLimit))
	params.Set("order_by", "-activity")

	data, err := getJSON(ctx, c.client, c.Config.BaseURL, "/questions/", params)
	if err != nil {
		return nil, err
	}
	return data.Get("results").Array(), nil
}

func (c *MetaculusConnector) parseQuestion(id int64, detail gjson.Result) (models.ForecastPoint, bool) {
	year, ok := ParseMetaculusMedian(detail)
	if !ok {
		return models.ForecastPoint{}, false
	}
	// Only date-type predictions in a reasonable range.
	if year <= 2025 || year >= 2200 {
		return models.ForecastPoint{}, false
	}

	title := detail.Get("title").String()
	if title == "" {
		title = fmt.Sprintf("Question %d", id)
	}

	return models.ForecastPoint{
		Source:         c.Name(),
		Question:       title,
		MedianYear:     year,
		NumForecasters: int(detail.Get("number_of_predictions").Int()),
		URL:            fmt.Sprintf("https://www.metaculus.com/questions/%d/", id),
	}, true
}

// ParseMetaculusMedian extracts the median year from a question detail. The
// community q2 may be a unix timestamp or a year; the recency-weighted
// aggregation center is used when q2 is absent.
func ParseMetaculusMedian(detail gjson.Result) (float64, bool) {
	if q2 := detail.Get("community_prediction.q2"); q2.Exists() && q2.Type == gjson.Number {
		v := q2.Float()
		switch {
		case v > 3000:
			t := time.Unix(int64(v), 0).UTC()
			return float64(t.Year()) + float64(t.Month())/12, true
		case v > 2020 && v < 2200:
			return v, true
		}
	}

	if center := detail.Get("aggregations.recency_weighted.centers.0"); center.Exists() && center.Type == gjson.Number {
		v := center.Float()
		switch {
		case v > 3000:
			return float64(time.Unix(int64(v), 0).UTC().Year()), true
		case v > 2020 && v < 2200:
			return v, true
		}
	}

	return 0, false
}
