package forecaster

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aioracle/aioracle/internal/models"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingFetch returns a fixed dataset and counts invocations.
type countingFetch struct {
	mu     sync.Mutex
	calls  int
	points []models.ForecastPoint
	err    error
}

func (f *countingFetch) Fetch(ctx context.Context) ([]models.ForecastPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.points, f.err
}

func (f *countingFetch) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var randomQuestions = []string{
	"When will AGI be achieved?",
	"Date of first artificial general intelligence",
	"When will superintelligence arrive?",
	"Transformative AI by which year?",
	"Technological singularity date",
	"When will recursive self-improvement begin?",
	"Human-level AI forecast",
}

var randomSources = []string{"Metaculus", "Polymarket", "Manifold"}

// randomPoints generates a noisy forecast set, including out-of-range values.
func randomPoints(rng *rand.Rand, n int) []models.ForecastPoint {
	points := make([]models.ForecastPoint, n)
	for i := range points {
		points[i] = models.ForecastPoint{
			Source:         randomSources[rng.IntN(len(randomSources))],
			Question:       randomQuestions[rng.IntN(len(randomQuestions))],
			MedianYear:     2000 + rng.Float64()*220,
			NumForecasters: rng.IntN(5000) - 10,
		}
	}
	return points
}
