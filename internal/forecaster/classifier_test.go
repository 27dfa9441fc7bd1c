package forecaster

import (
	"testing"

	"github.com/aioracle/aioracle/internal/models"
)

func TestClassifyQuestion(t *testing.T) {
	tests := []struct {
		question string
		expected models.Milestone
	}{
		{"When will AGI arrive?", models.MilestoneAGI},
		{"Human-level machine intelligence", models.MilestoneAGI},
		{"When will SUPERINTELLIGENCE be built?", models.MilestoneASI},
		{"Transformative AI by 2040?", models.MilestoneASI},
		{"Date of the technological singularity", models.MilestoneSingularity},
		{"Recursive self-improvement leading to superintelligence", models.MilestoneSingularity},
		{"Intelligence explosion before ASI?", models.MilestoneSingularity},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := ClassifyQuestion(tt.question); got != tt.expected {
				t.Errorf("ClassifyQuestion(%q) = %v, want %v", tt.question, got, tt.expected)
			}
		})
	}
}

func TestClassify_PreservesOrder(t *testing.T) {
	points := []models.ForecastPoint{
		{Question: "AGI one"},
		{Question: "Superintelligence one"},
		{Question: "AGI two"},
		{Question: "Singularity one"},
	}

	b := Classify(points)

	if len(b.AGI) != 2 || b.AGI[0].Question != "AGI one" || b.AGI[1].Question != "AGI two" {
		t.Errorf("unexpected agi bucket: %+v", b.AGI)
	}
	if len(b.ASI) != 1 || len(b.Singularity) != 1 {
		t.Errorf("unexpected bucket sizes: asi=%d singularity=%d", len(b.ASI), len(b.Singularity))
	}
	if got := b.Get(models.MilestoneSingularity); len(got) != 1 {
		t.Errorf("Get(singularity) returned %d points", len(got))
	}
}

func TestBuckets_WithFallbacks(t *testing.T) {
	t.Run("Missing ASI and singularity inherit AGI", func(t *testing.T) {
		points := []models.ForecastPoint{{Question: "AGI"}, {Question: "AGI soon"}}
		b := Classify(points).WithFallbacks(points)
		if len(b.ASI) != 2 || len(b.Singularity) != 2 {
			t.Errorf("expected fallbacks to AGI, got asi=%d singularity=%d", len(b.ASI), len(b.Singularity))
		}
	})

	t.Run("Missing AGI falls back to everything first", func(t *testing.T) {
		points := []models.ForecastPoint{{Question: "Superintelligence"}}
		b := Classify(points).WithFallbacks(points)
		if len(b.AGI) != 1 {
			t.Fatalf("expected agi fallback to all points, got %d", len(b.AGI))
		}
		if len(b.ASI) != 1 || b.ASI[0].Question != "Superintelligence" {
			t.Errorf("asi bucket should keep its own evidence: %+v", b.ASI)
		}
		if len(b.Singularity) != 1 || b.Singularity[0].Question != "Superintelligence" {
			t.Errorf("singularity should inherit the substituted agi bucket: %+v", b.Singularity)
		}
	})
}
