package models

import "time"

// ForecastPoint is a single external forecast observation produced by a source connector.
type ForecastPoint struct {
	Source         string  `json:"source"`          // Provider identifier, e.g. "Metaculus"
	Question       string  `json:"question"`        // Free-text question label
	MedianYear     float64 `json:"median_year"`     // Fractional year, fraction is month resolution
	NumForecasters int     `json:"num_forecasters"` // Participation count, used as a weight proxy
	URL            string  `json:"url,omitempty"`
}

// Milestone identifies which AI milestone a forecast speaks to.
type Milestone string

const (
	MilestoneAGI         Milestone = "agi"
	MilestoneASI         Milestone = "asi"
	MilestoneSingularity Milestone = "singularity"
)

// Milestones lists every milestone in timeline order.
var Milestones = []Milestone{MilestoneAGI, MilestoneASI, MilestoneSingularity}

// CacheEntry is the last successful fetch held by the engine cache.
type CacheEntry struct {
	Data      []ForecastPoint
	Timestamp time.Time
}

// Expired reports whether the entry is older than ttl at the given instant.
func (e CacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Timestamp) > ttl
}
