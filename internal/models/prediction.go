package models

import "math"

// Prediction is the consensus timeline produced by one engine run. It is persisted
// verbatim and never mutated after creation.
type Prediction struct {
	Timestamp       string  `json:"timestamp"` // ISO-8601, second precision, UTC
	AGIDate         string  `json:"agi_date"`  // YYYY-MM-01
	AGIType         string  `json:"agi_type"`  // ConsensusType label
	AGIProb         float64 `json:"agi_prob"`
	ASIDate         string  `json:"asi_date"`
	ASIContext      string  `json:"asi_context"` // TakeoffScenario label
	SingularityDate string  `json:"singularity_date"`
	SingularityProb float64 `json:"singularity_prob"`
}

// TimestampLayout is the layout of Prediction.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05"

// ConsensusType classifies how agreement on the AGI estimate was reached.
type ConsensusType string

const (
	ConsensusCrowdExpert      ConsensusType = "CROWD_EXPERT"
	ConsensusPredictionMarket ConsensusType = "PREDICTION_MARKET"
	ConsensusExpertSurvey     ConsensusType = "EXPERT_SURVEY"
	ConsensusSingleSource     ConsensusType = "SINGLE_SOURCE"
)

var consensusLabels = map[ConsensusType]string{
	ConsensusCrowdExpert:      "Crowd + Expert Consensus",
	ConsensusPredictionMarket: "Prediction Market Consensus",
	ConsensusExpertSurvey:     "Expert Survey",
	ConsensusSingleSource:     "Single Source Estimate",
}

// Label returns the display string for the consensus type.
func (c ConsensusType) Label() string {
	if label, ok := consensusLabels[c]; ok {
		return label
	}
	return string(c)
}

// TakeoffScenario describes the AGI to ASI transition speed.
type TakeoffScenario string

const (
	TakeoffRapid    TakeoffScenario = "RAPID"
	TakeoffModerate TakeoffScenario = "MODERATE"
	TakeoffSlow     TakeoffScenario = "SLOW"
)

var takeoffLabels = map[TakeoffScenario]string{
	TakeoffRapid:    "Rapid Takeoff Scenario",
	TakeoffModerate: "Moderate Transition",
	TakeoffSlow:     "Slow Takeoff Scenario",
}

// Label returns the display string for the scenario.
func (t TakeoffScenario) Label() string {
	if label, ok := takeoffLabels[t]; ok {
		return label
	}
	return string(t)
}

// TakeoffFromGap maps the AGI-to-ASI gap in years to a scenario.
func TakeoffFromGap(gap float64) TakeoffScenario {
	switch {
	case gap < 5:
		return TakeoffRapid
	case gap < 15:
		return TakeoffModerate
	default:
		return TakeoffSlow
	}
}

// ConfidenceMetrics summarizes the spread and provenance of a set of forecasts.
type ConfidenceMetrics struct {
	MeanYear        float64 `json:"mean_year"`
	MedianYear      float64 `json:"median_year"`
	StdDeviation    float64 `json:"std_deviation"`
	SampleSize      int     `json:"sample_size"`
	SourceDiversity int     `json:"source_diversity"`
	ConfidenceScore float64 `json:"confidence_score"` // 0-100
}

// NewConfidenceMetrics builds metrics and derives the confidence score:
// 30% sample size (saturating at 50), 30% source diversity (saturating at 3)
// and 40% spread (floored at 0.3, zero at a 30 year deviation).
func NewConfidenceMetrics(mean, median, stdDev float64, sampleSize, sourceDiversity int) ConfidenceMetrics {
	sizeFactor := math.Min(1, float64(sampleSize)/50)
	diversityFactor := math.Min(1, float64(sourceDiversity)/3)
	spreadFactor := math.Max(0.3, 1-stdDev/30)

	return ConfidenceMetrics{
		MeanYear:        mean,
		MedianYear:      median,
		StdDeviation:    stdDev,
		SampleSize:      sampleSize,
		SourceDiversity: sourceDiversity,
		ConfidenceScore: (sizeFactor*0.3 + diversityFactor*0.3 + spreadFactor*0.4) * 100,
	}
}

// Analysis is the detailed view of one engine run, including the raw forecasts.
type Analysis struct {
	Prediction         Prediction        `json:"prediction"`
	TotalDataPoints    int               `json:"total_data_points"`
	Sources            []string          `json:"sources"`
	AGIMetrics         ConfidenceMetrics `json:"agi_metrics"`
	ASIMetrics         ConfidenceMetrics `json:"asi_metrics"`
	SingularityMetrics ConfidenceMetrics `json:"singularity_metrics"`
	RawForecasts       []ForecastPoint   `json:"raw_forecasts"`
}

// PredictionRecord is a persisted prediction with its storage id.
type PredictionRecord struct {
	ID string `json:"id"`
	Prediction
}
