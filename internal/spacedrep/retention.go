package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/tutorcore/internal/store"
)

// CalculateRetention estimates the probability the learner still recalls
// the card at now: (1 + t/(9S))^-1 with t days since the last review.
// A card without stability has no retention.
func CalculateRetention(card store.ReviewCard, now time.Time) float64 {
	if card.Stability <= 0 {
		return 0
	}
	var elapsed float64
	if card.LastReviewed != nil && now.After(*card.LastReviewed) {
		elapsed = now.Sub(*card.LastReviewed).Hours() / 24
	}
	r := 1 / (1 + elapsed/(9*card.Stability))
	return math.Min(1, math.Max(0, r))
}

// GetOptimalInterval returns the whole days after which retention falls to
// desiredRetention. It is 0 when the card has no stability or the target
// is outside (0,1).
func GetOptimalInterval(card store.ReviewCard, desiredRetention float64) int {
	if card.Stability <= 0 || desiredRetention <= 0 || desiredRetention >= 1 {
		return 0
	}
	interval := 9 * card.Stability * (1/desiredRetention - 1)
	return int(math.Round(math.Max(0, interval)))
}

// OverdueDays returns how many days past due the card is, or 0 if it is
// not yet due.
func OverdueDays(card store.ReviewCard, now time.Time) float64 {
	if now.Before(card.NextReview) {
		return 0
	}
	return now.Sub(card.NextReview).Hours() / 24.0
}
