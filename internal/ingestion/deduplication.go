package ingestion

import (
	"strings"

	"github.com/aioracle/aioracle/internal/models"
)

// questionKeyLength is the prefix length used to detect duplicate questions.
const questionKeyLength = 50

// QuestionKey returns the deduplication key of a question: its lowercase text
// truncated to the first 50 characters. Distinct questions that share such a
// prefix collide and only the first is kept.
func QuestionKey(question string) string {
	return truncateRunes(strings.ToLower(question), questionKeyLength)
}

// QuestionDeduplicator tracks question keys seen within one fetch cycle.
type QuestionDeduplicator struct {
	seen map[string]struct{}
}

// NewQuestionDeduplicator creates an empty deduplicator.
func NewQuestionDeduplicator() *QuestionDeduplicator {
	return &QuestionDeduplicator{seen: make(map[string]struct{})}
}

// IsNew reports whether no point with the same question key has been marked.
func (d *QuestionDeduplicator) IsNew(point models.ForecastPoint) bool {
	_, exists := d.seen[QuestionKey(point.Question)]
	return !exists
}

// Mark records a point's question key as seen.
func (d *QuestionDeduplicator) Mark(point models.ForecastPoint) {
	d.seen[QuestionKey(point.Question)] = struct{}{}
}

// Size returns the number of distinct keys seen.
func (d *QuestionDeduplicator) Size() int {
	return len(d.seen)
}

// Deduplicate keeps the first point per question key, preserving discovery order.
func Deduplicate(points []models.ForecastPoint) []models.ForecastPoint {
	d := NewQuestionDeduplicator()
	unique := make([]models.ForecastPoint, 0, len(points))
	for _, p := range points {
		if !d.IsNew(p) {
			continue
		}
		d.Mark(p)
		unique = append(unique, p)
	}
	return unique
}
