package forecaster

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

const (
	// unknownHorizonYears is added to the current year when a bucket has no forecasts.
	unknownHorizonYears = 25

	asiMinGapYears         = 5
	singularityMinGapYears = 15

	defaultProbability = 60.0
	minProbability     = 40.0
	maxProbability     = 95.0

	metaculusSource = "Metaculus"
)

// Aggregate reduces a bucket to one year using a soft-weighted mean: each point
// counts sqrt(max(1, forecasters)). This dampens very large crowds; it is a
// heuristic, not a calibrated estimator.
func Aggregate(points []models.ForecastPoint, now time.Time) float64 {
	if len(points) == 0 {
		return float64(now.Year() + unknownHorizonYears)
	}

	// Offsets from the first year keep equal-year buckets exact.
	base := points[0].MedianYear
	lo, hi := base, base
	var weightedOffset, totalWeight float64
	for _, p := range points {
		w := math.Sqrt(float64(max(1, p.NumForecasters)))
		weightedOffset += (p.MedianYear - base) * w
		totalWeight += w
		lo = math.Min(lo, p.MedianYear)
		hi = math.Max(hi, p.MedianYear)
	}

	if totalWeight == 0 {
		return base
	}
	return math.Max(lo, math.Min(hi, base+weightedOffset/totalWeight))
}

// CalculateMetrics computes descriptive statistics for a bucket.
func CalculateMetrics(points []models.ForecastPoint) models.ConfidenceMetrics {
	if len(points) == 0 {
		return models.NewConfidenceMetrics(0, 0, 0, 0, 0)
	}

	years := make([]float64, len(points))
	var sum float64
	for i, p := range points {
		years[i] = p.MedianYear
		sum += p.MedianYear
	}
	mean := sum / float64(len(years))

	var stdDev float64
	if len(years) > 1 {
		var sumSquaredDiff float64
		for _, y := range years {
			diff := y - mean
			sumSquaredDiff += diff * diff
		}
		stdDev = math.Sqrt(sumSquaredDiff / float64(len(years)-1))
	}

	return models.NewConfidenceMetrics(mean, median(years), stdDev, len(points), len(distinctSources(points)))
}

// Probability turns confidence metrics into a milestone probability in percent.
func Probability(m models.ConfidenceMetrics) float64 {
	if m.SampleSize < 2 {
		return defaultProbability
	}
	return math.Max(minProbability, math.Min(maxProbability, m.ConfidenceScore))
}

// DetermineConsensus classifies the provenance of the AGI bucket.
func DetermineConsensus(points []models.ForecastPoint) models.ConsensusType {
	sources := distinctSources(points)
	_, hasMetaculus := sources[metaculusSource]

	switch {
	case len(sources) == 0:
		return models.ConsensusSingleSource
	case len(sources) == 1 && hasMetaculus:
		return models.ConsensusPredictionMarket
	case len(sources) == 1:
		return models.ConsensusExpertSurvey
	case hasMetaculus:
		return models.ConsensusCrowdExpert
	default:
		return models.ConsensusExpertSurvey
	}
}

// Timeline holds aggregated milestone years.
type Timeline struct {
	AGI         float64
	ASI         float64
	Singularity float64
}

// Year returns the timeline year for a milestone.
func (t Timeline) Year(m models.Milestone) float64 {
	switch m {
	case models.MilestoneASI:
		return t.ASI
	case models.MilestoneSingularity:
		return t.Singularity
	default:
		return t.AGI
	}
}

func (t *Timeline) set(m models.Milestone, year float64) {
	switch m {
	case models.MilestoneASI:
		t.ASI = year
	case models.MilestoneSingularity:
		t.Singularity = year
	default:
		t.AGI = year
	}
}

// Ordered returns the timeline with AGI <= ASI <= Singularity enforced, and
// whether any year had to be moved.
func (t Timeline) Ordered() (Timeline, bool) {
	adjusted := false
	if t.ASI <= t.AGI {
		t.ASI = t.AGI + asiMinGapYears
		adjusted = true
	}
	if t.Singularity <= t.ASI {
		t.Singularity = t.ASI + singularityMinGapYears
		adjusted = true
	}
	return t, adjusted
}

// YearToDate converts a fractional year to a YYYY-MM-01 string. Precision below a month is dropped.
func YearToDate(year float64) string {
	yr := math.Floor(year)
	month := int((year-yr)*12) + 1
	month = max(1, min(12, month))
	return fmt.Sprintf("%d-%02d-01", int(yr), month)
}

// Sources returns the distinct sources of points, sorted.
func Sources(points []models.ForecastPoint) []string {
	set := distinctSources(points)
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func distinctSources(points []models.ForecastPoint) map[string]struct{} {
	set := make(map[string]struct{}, len(points))
	for _, p := range points {
		set[p.Source] = struct{}{}
	}
	return set
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
