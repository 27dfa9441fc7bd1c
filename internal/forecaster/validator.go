package forecaster

import (
	"log/slog"

	"github.com/aioracle/aioracle/internal/models"
)

const (
	MinValidYear   = 2025
	MaxValidYear   = 2200
	MinForecasters = 0
)

// IsValid reports whether a point carries a plausible year and forecaster count.
func IsValid(p models.ForecastPoint) bool {
	return p.MedianYear >= MinValidYear && p.MedianYear <= MaxValidYear && p.NumForecasters >= MinForecasters
}

// Validator drops implausible forecasts and enforces a minimum surviving count.
type Validator struct {
	MinDataPoints int
	logger        *slog.Logger
}

// NewValidator creates a validator. A non-positive minimum is treated as 1.
func NewValidator(minDataPoints int, logger *slog.Logger) *Validator {
	if minDataPoints < 1 {
		minDataPoints = 1
	}
	return &Validator{MinDataPoints: minDataPoints, logger: logger}
}

// Validate returns the valid subset of points, in order. Values are never corrected.
func (v *Validator) Validate(points []models.ForecastPoint) ([]models.ForecastPoint, error) {
	valid := make([]models.ForecastPoint, 0, len(points))
	for _, p := range points {
		if !IsValid(p) {
			v.logger.Debug("dropping invalid forecast",
				"source", p.Source,
				"question", truncate(p.Question, 50),
				"median_year", p.MedianYear,
				"num_forecasters", p.NumForecasters)
			continue
		}
		valid = append(valid, p)
	}

	v.logger.Info("validated forecast data", "valid", len(valid), "total", len(points))

	if len(valid) < v.MinDataPoints {
		return nil, &DataValidationError{Got: len(valid), Need: v.MinDataPoints}
	}
	return valid, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
