package forecaster

import (
	"errors"
	"testing"

	"github.com/aioracle/aioracle/internal/models"
)

func TestValidator_Bounds(t *testing.T) {
	v := NewValidator(1, newTestLogger())

	tests := []struct {
		name  string
		point models.ForecastPoint
		valid bool
	}{
		{"Year before lower bound", models.ForecastPoint{MedianYear: 2024}, false},
		{"Inclusive lower bound", models.ForecastPoint{MedianYear: 2025}, true},
		{"Inclusive upper bound", models.ForecastPoint{MedianYear: 2200}, true},
		{"Year after upper bound", models.ForecastPoint{MedianYear: 2201}, false},
		{"Negative forecasters", models.ForecastPoint{MedianYear: 2030, NumForecasters: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.point); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}

	valid, err := v.Validate([]models.ForecastPoint{
		{MedianYear: 2024}, {MedianYear: 2025}, {MedianYear: 2201}, {MedianYear: 2031.2},
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if len(valid) != 2 || valid[0].MedianYear != 2025 || valid[1].MedianYear != 2031.2 {
		t.Errorf("unexpected valid set: %+v", valid)
	}
}

func TestValidator_InsufficientData(t *testing.T) {
	v := NewValidator(3, newTestLogger())

	_, err := v.Validate([]models.ForecastPoint{{MedianYear: 2030}, {MedianYear: 1999}})
	if !errors.Is(err, ErrDataValidation) {
		t.Fatalf("expected ErrDataValidation, got %v", err)
	}

	var verr *DataValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *DataValidationError, got %T", err)
	}
	if verr.Got != 1 || verr.Need != 3 {
		t.Errorf("unexpected counts: got=%d need=%d", verr.Got, verr.Need)
	}
}

func TestNewValidator_DefaultMinimum(t *testing.T) {
	if v := NewValidator(0, newTestLogger()); v.MinDataPoints != 1 {
		t.Errorf("MinDataPoints = %d, want 1", v.MinDataPoints)
	}
}
