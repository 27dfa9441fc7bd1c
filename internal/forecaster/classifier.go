package forecaster

import (
	"strings"

	"github.com/aioracle/aioracle/internal/models"
)

var (
	singularityKeywords = []string{
		"singularity",
		"full automation",
		"technological singularity",
		"intelligence explosion",
		"recursive self-improvement",
	}

	asiKeywords = []string{
		"asi",
		"superintelligence",
		"superintelligent",
		"transformative ai",
		"transformative artificial",
	}
)

// Buckets holds forecasts partitioned by milestone.
type Buckets struct {
	AGI         []models.ForecastPoint
	ASI         []models.ForecastPoint
	Singularity []models.ForecastPoint
}

// Get returns the bucket for a milestone.
func (b Buckets) Get(m models.Milestone) []models.ForecastPoint {
	switch m {
	case models.MilestoneASI:
		return b.ASI
	case models.MilestoneSingularity:
		return b.Singularity
	default:
		return b.AGI
	}
}

// ClassifyQuestion assigns a question to a milestone. Singularity keywords are
// checked before ASI keywords; anything unmatched is AGI.
func ClassifyQuestion(question string) models.Milestone {
	q := strings.ToLower(question)
	if containsAny(q, singularityKeywords) {
		return models.MilestoneSingularity
	}
	if containsAny(q, asiKeywords) {
		return models.MilestoneASI
	}
	return models.MilestoneAGI
}

// Classify partitions points into milestone buckets, preserving order.
func Classify(points []models.ForecastPoint) Buckets {
	var b Buckets
	for _, p := range points {
		switch ClassifyQuestion(p.Question) {
		case models.MilestoneSingularity:
			b.Singularity = append(b.Singularity, p)
		case models.MilestoneASI:
			b.ASI = append(b.ASI, p)
		default:
			b.AGI = append(b.AGI, p)
		}
	}
	return b
}

// WithFallbacks fills empty buckets: AGI falls back to all points, then ASI and
// Singularity fall back to the (possibly substituted) AGI bucket.
func (b Buckets) WithFallbacks(all []models.ForecastPoint) Buckets {
	if len(b.AGI) == 0 {
		b.AGI = all
	}
	if len(b.ASI) == 0 {
		b.ASI = b.AGI
	}
	if len(b.Singularity) == 0 {
		b.Singularity = b.AGI
	}
	return b
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
