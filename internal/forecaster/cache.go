package forecaster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

// FetchFunc produces the raw forecast set for one engine run.
type FetchFunc func(ctx context.Context) ([]models.ForecastPoint, error)

// Cache memoizes the last successful fetch for a fixed TTL. A single mutex is
// held across the check-or-refill sequence so at most one refresh is in flight;
// concurrent callers wait and then observe its result.
type Cache struct {
	mu     sync.Mutex
	entry  *models.CacheEntry
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCache creates an empty cache. A zero ttl disables caching.
func NewCache(ttl time.Duration, now func() time.Time, logger *slog.Logger) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, logger: logger}
}

// Fetch returns cached data when fresh, otherwise calls fill. The boolean reports a cache hit.
// A fill error or an empty result is returned as a *DataFetchError and never cached.
func (c *Cache) Fetch(ctx context.Context, forceRefresh bool, fill FetchFunc) ([]models.ForecastPoint, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.ttl > 0 && c.entry != nil && !c.entry.Expired(c.ttl, c.now()) {
		c.logger.Debug("returning cached forecast data", "count", len(c.entry.Data))
		return c.entry.Data, true, nil
	}

	c.logger.Info("fetching fresh forecast data from sources", "force_refresh", forceRefresh)
	points, err := fill(ctx)
	if err != nil {
		c.logger.Error("failed to fetch forecast data", "error", err)
		return nil, false, &DataFetchError{Reason: "failed to fetch data", Err: err}
	}
	if len(points) == 0 {
		return nil, false, &DataFetchError{Reason: "no forecast data retrieved from any source"}
	}

	if c.ttl > 0 {
		c.entry = &models.CacheEntry{Data: points, Timestamp: c.now()}
		c.logger.Debug("cached forecast data", "count", len(points), "ttl", c.ttl)
	}
	return points, false, nil
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	c.logger.Debug("cache cleared")
}

// Populated reports whether the cache currently holds an entry, fresh or not.
func (c *Cache) Populated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry != nil
}
