package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

type recordingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *recordingObserver) ObserveConnector(name string, points int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[name] = points
}

func TestCollector_MergesInConnectorOrder(t *testing.T) {
	slow := &staticConnector{
		name:   "Metaculus",
		delay:  30 * time.Millisecond,
		points: []models.ForecastPoint{{Source: "Metaculus", Question: "When will AGI arrive?", MedianYear: 2032}},
	}
	fast := &staticConnector{
		name: "Manifold",
		points: []models.ForecastPoint{
			{Source: "Manifold", Question: "when will agi arrive?", MedianYear: 2029},
			{Source: "Manifold", Question: "Superintelligence by 2045?", MedianYear: 2045},
		},
	}
	broken := &staticConnector{name: "Broken", panics: true}

	obs := &recordingObserver{counts: map[string]int{}}
	collector := NewCollector([]Connector{slow, broken, fast}, 3, newTestLogger())
	collector.SetObserver(obs)

	points, err := collector.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 points after dedup, got %d: %+v", len(points), points)
	}
	if points[0].Source != "Metaculus" {
		t.Errorf("first connector's point should win dedup, got %+v", points[0])
	}
	if points[1].MedianYear != 2045 {
		t.Errorf("unexpected second point: %+v", points[1])
	}
	if obs.counts["Broken"] != 0 || obs.counts["Manifold"] != 2 || obs.counts["Metaculus"] != 1 {
		t.Errorf("unexpected observed counts: %v", obs.counts)
	}
}

func TestCollector_AllEmpty(t *testing.T) {
	collector := NewCollector([]Connector{&staticConnector{name: "A"}, &staticConnector{name: "B"}}, 0, newTestLogger())

	points, err := collector.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}

func TestCollector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	collector := NewCollector([]Connector{&staticConnector{name: "A"}}, 1, newTestLogger())
	if _, err := collector.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCollector_Statuses(t *testing.T) {
	file := NewFileConnector("Fixture", "/nonexistent/forecasts.json", newTestLogger())
	collector := NewCollector([]Connector{file, &staticConnector{name: "Static"}}, 2, newTestLogger())

	collector.Fetch(context.Background())
	statuses := collector.Statuses()

	if len(statuses) != 1 || statuses[0].Name != "Fixture" || statuses[0].Healthy {
		t.Errorf("unexpected statuses: %+v", statuses)
	}
}
