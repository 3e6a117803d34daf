package mastery

import (
	"testing"
	"time"

	"github.com/abhisek/tutorcore/internal/store"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestMetricsFromAnswers(t *testing.T) {
	answers := []store.AnswerRecord{
		{IsCorrect: true, Depth: store.DepthDeep, HintsUsed: 1, CreatedAt: t0.Add(-72 * time.Hour)},
		{IsCorrect: false, Depth: store.DepthShallow, HintsUsed: 2, CreatedAt: t0.Add(-60 * time.Hour)},
		{IsCorrect: true, Depth: store.DepthNone, CreatedAt: t0.Add(-50 * time.Hour)},
	}

	got := MetricsFromAnswers(answers, t0)
	want := Metrics{
		CorrectAnswers:        2,
		TotalAnswers:          3,
		DeepAnswers:           1,
		HintsUsed:             3,
		DaysSinceLastActivity: 2, // 50h floors to 2 days
	}
	if got != want {
		t.Errorf("MetricsFromAnswers = %+v, want %+v", got, want)
	}
}

func TestMetricsFromAnswers_Empty(t *testing.T) {
	if got := MetricsFromAnswers(nil, t0); got != (Metrics{}) {
		t.Errorf("MetricsFromAnswers(nil) = %+v, want zero", got)
	}
}

func TestMetricsFromAnswers_FutureTimestamp(t *testing.T) {
	answers := []store.AnswerRecord{{IsCorrect: true, CreatedAt: t0.Add(time.Hour)}}
	if got := MetricsFromAnswers(answers, t0); got.DaysSinceLastActivity != 0 {
		t.Errorf("DaysSinceLastActivity = %d, want 0", got.DaysSinceLastActivity)
	}
}

func TestWeightedTopicMastery(t *testing.T) {
	tests := []struct {
		name string
		subs []SubtopicWeight
		want int
	}{
		{"empty", nil, 0},
		{"single", []SubtopicWeight{{Mastery: 73, Concepts: 4}}, 73},
		// (100*3 + 40*1) / 4 = 85
		{"concept weighted", []SubtopicWeight{{100, 3}, {40, 1}}, 85},
		// zero-concept subtopics weigh as one: (90 + 30) / 2
		{"no concepts", []SubtopicWeight{{90, 0}, {30, 0}}, 60},
		// (80*2 + 75*1) / 3 = 78.33
		{"rounded", []SubtopicWeight{{80, 2}, {75, 1}}, 78},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedTopicMastery(tt.subs); got != tt.want {
				t.Errorf("WeightedTopicMastery = %d, want %d", got, tt.want)
			}
		})
	}
}
