package forecaster

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

func TestAggregate_WeightedMean(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		points   []models.ForecastPoint
		expected float64
	}{
		{
			name:     "Empty bucket uses horizon",
			points:   nil,
			expected: 2051,
		},
		{
			name:     "Single point",
			points:   []models.ForecastPoint{{MedianYear: 2033.5, NumForecasters: 12}},
			expected: 2033.5,
		},
		{
			name: "Zero and negative forecasters weigh as one",
			points: []models.ForecastPoint{
				{MedianYear: 2030, NumForecasters: 0},
				{MedianYear: 2040, NumForecasters: -3},
			},
			expected: 2035,
		},
		{
			name: "Square root weighting",
			points: []models.ForecastPoint{
				{MedianYear: 2030, NumForecasters: 1},
				{MedianYear: 2040, NumForecasters: 9},
			},
			expected: (2030*1 + 2040*3) / 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.points, now)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Aggregate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAggregate_BoundedByBucket(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	now := time.Now()

	for i := 0; i < 200; i++ {
		points := randomPoints(rng, 1+rng.IntN(30))
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range points {
			lo = math.Min(lo, p.MedianYear)
			hi = math.Max(hi, p.MedianYear)
		}

		got := Aggregate(points, now)
		if got < lo || got > hi {
			t.Fatalf("Aggregate() = %v outside [%v, %v]", got, lo, hi)
		}
	}
}

func TestAggregate_EqualYearsExact(t *testing.T) {
	now := time.Now()

	for _, forecasters := range []int{0, 2, 3, 5, 7, 11, 1000} {
		points := []models.ForecastPoint{{MedianYear: 2040, NumForecasters: forecasters}}
		if got := Aggregate(points, now); got != 2040 {
			t.Errorf("forecasters=%d: Aggregate() = %v, want 2040", forecasters, got)
		}
		if got := YearToDate(Aggregate(points, now)); got != "2040-01-01" {
			t.Errorf("forecasters=%d: YearToDate() = %q, want 2040-01-01", forecasters, got)
		}
	}

	repeated := []models.ForecastPoint{
		{MedianYear: 2037, NumForecasters: 5},
		{MedianYear: 2037, NumForecasters: 13},
		{MedianYear: 2037, NumForecasters: 2},
	}
	if got := Aggregate(repeated, now); got != 2037 {
		t.Errorf("Aggregate() = %v, want 2037", got)
	}
}

func TestCalculateMetrics(t *testing.T) {
	points := []models.ForecastPoint{
		{Source: "A", MedianYear: 2030},
		{Source: "B", MedianYear: 2032},
		{Source: "A", MedianYear: 2040},
		{Source: "A", MedianYear: 2034},
	}

	m := CalculateMetrics(points)

	if m.SampleSize != 4 {
		t.Errorf("SampleSize = %d, want 4", m.SampleSize)
	}
	if m.SourceDiversity != 2 {
		t.Errorf("SourceDiversity = %d, want 2", m.SourceDiversity)
	}
	if m.MeanYear != 2034 {
		t.Errorf("MeanYear = %v, want 2034", m.MeanYear)
	}
	if m.MedianYear != 2033 {
		t.Errorf("MedianYear = %v, want 2033", m.MedianYear)
	}
	// Sample deviation: sqrt((16+4+36+0)/3)
	if want := math.Sqrt(56.0 / 3); math.Abs(m.StdDeviation-want) > 1e-9 {
		t.Errorf("StdDeviation = %v, want %v", m.StdDeviation, want)
	}

	single := CalculateMetrics(points[:1])
	if single.StdDeviation != 0 {
		t.Errorf("single point deviation = %v, want 0", single.StdDeviation)
	}

	empty := CalculateMetrics(nil)
	if empty.SampleSize != 0 || empty.ConfidenceScore != 40 {
		t.Errorf("unexpected empty metrics: %+v", empty)
	}
}

func TestProbability(t *testing.T) {
	tests := []struct {
		name     string
		metrics  models.ConfidenceMetrics
		expected float64
	}{
		{"Insufficient sample", models.ConfidenceMetrics{SampleSize: 1, ConfidenceScore: 99}, 60},
		{"Clamped low", models.ConfidenceMetrics{SampleSize: 2, ConfidenceScore: 12}, 40},
		{"Clamped high", models.ConfidenceMetrics{SampleSize: 80, ConfidenceScore: 100}, 95},
		{"Passthrough", models.ConfidenceMetrics{SampleSize: 5, ConfidenceScore: 63.2}, 63.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Probability(tt.metrics); got != tt.expected {
				t.Errorf("Probability() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDetermineConsensus(t *testing.T) {
	tests := []struct {
		name     string
		sources  []string
		expected models.ConsensusType
	}{
		{"No sources", nil, models.ConsensusSingleSource},
		{"Metaculus only", []string{"Metaculus", "Metaculus"}, models.ConsensusPredictionMarket},
		{"Single other source", []string{"Manifold"}, models.ConsensusExpertSurvey},
		{"Multiple with Metaculus", []string{"Manifold", "Metaculus"}, models.ConsensusCrowdExpert},
		{"Multiple without Metaculus", []string{"Manifold", "Polymarket"}, models.ConsensusExpertSurvey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var points []models.ForecastPoint
			for _, s := range tt.sources {
				points = append(points, models.ForecastPoint{Source: s, MedianYear: 2030})
			}
			if got := DetermineConsensus(points); got != tt.expected {
				t.Errorf("DetermineConsensus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTimeline_Ordered(t *testing.T) {
	tests := []struct {
		name     string
		in       Timeline
		expected Timeline
		adjusted bool
	}{
		{"Already ordered", Timeline{2030, 2040, 2060}, Timeline{2030, 2040, 2060}, false},
		{"ASI equal to AGI", Timeline{2030, 2030, 2060}, Timeline{2030, 2035, 2060}, true},
		{"ASI before AGI cascades", Timeline{2040, 2030, 2041}, Timeline{2040, 2045, 2060}, true},
		{"Singularity before ASI", Timeline{2030, 2040, 2035}, Timeline{2030, 2040, 2055}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, adjusted := tt.in.Ordered()
			if got != tt.expected || adjusted != tt.adjusted {
				t.Errorf("Ordered() = %+v, %v; want %+v, %v", got, adjusted, tt.expected, tt.adjusted)
			}
		})
	}
}

func TestYearToDate(t *testing.T) {
	tests := []struct {
		year     float64
		expected string
	}{
		{2030.0, "2030-01-01"},
		{2030.5, "2030-07-01"},
		{2030.999, "2030-12-01"},
		{2047.25, "2047-04-01"},
	}

	for _, tt := range tests {
		if got := YearToDate(tt.year); got != tt.expected {
			t.Errorf("YearToDate(%v) = %q, want %q", tt.year, got, tt.expected)
		}
	}
}
