package mastery

import (
	"time"

	"github.com/abhisek/tutorcore/internal/store"
)

// MetricsFromAnswers tallies answers into Metrics. Recency is measured in
// whole days from the newest answer to now.
func MetricsFromAnswers(answers []store.AnswerRecord, now time.Time) Metrics {
	var m Metrics
	var newest time.Time
	for _, a := range answers {
		m.TotalAnswers++
		if a.IsCorrect {
			m.CorrectAnswers++
		}
		if a.Depth == store.DepthDeep {
			m.DeepAnswers++
		}
		m.HintsUsed += a.HintsUsed
		if a.CreatedAt.After(newest) {
			newest = a.CreatedAt
		}
	}
	if m.TotalAnswers > 0 && now.After(newest) {
		m.DaysSinceLastActivity = int(now.Sub(newest) / (24 * time.Hour))
	}
	return m
}
