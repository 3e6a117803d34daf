package spacedrep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/tutorcore/internal/store"
)

func reviewedCard(stability float64, lastReviewed time.Time) store.ReviewCard {
	return store.ReviewCard{Stability: stability, LastReviewed: &lastReviewed}
}

func TestCalculateRetention(t *testing.T) {
	tests := []struct {
		name string
		card store.ReviewCard
		now  time.Time
		want float64
	}{
		{"no stability", reviewedCard(0, t0), t0.Add(48 * time.Hour), 0},
		{"just reviewed", reviewedCard(5, t0), t0, 1},
		{"at 9S days", reviewedCard(2, t0), t0.Add(18 * 24 * time.Hour), 0.5},
		// (1 + 3/(9*10))^-1
		{"three days", reviewedCard(10, t0), t0.Add(72 * time.Hour), 1 / (1 + 3.0/90)},
		{"never reviewed", store.ReviewCard{Stability: 4}, t0, 1},
		{"clock behind review", reviewedCard(4, t0), t0.Add(-time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRetention(tt.card, tt.now)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestGetOptimalInterval(t *testing.T) {
	tests := []struct {
		name      string
		stability float64
		retention float64
		want      int
	}{
		{"default target", 10, 0.9, 10},
		{"lower target waits longer", 20, 0.8, 45},
		{"no stability", 0, 0.9, 0},
		{"target zero", 10, 0, 0},
		{"target one", 10, 1, 0},
		{"target above one", 10, 1.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetOptimalInterval(store.ReviewCard{Stability: tt.stability}, tt.retention)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptimalIntervalInvertsRetention(t *testing.T) {
	card := reviewedCard(20, t0)
	days := GetOptimalInterval(card, 0.9)
	got := CalculateRetention(card, t0.Add(time.Duration(days)*24*time.Hour))
	assert.InDelta(t, 0.9, got, 0.01)
}

func TestOverdueDays(t *testing.T) {
	card := store.ReviewCard{NextReview: t0}
	assert.Zero(t, OverdueDays(card, t0.Add(-time.Hour)))
	assert.InDelta(t, 1.5, OverdueDays(card, t0.Add(36*time.Hour)), 1e-9)
}
