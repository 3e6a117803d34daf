// Package difficulty picks the 1-5 difficulty of the next question from a
// rolling window of recent answers.
package difficulty

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/store"
)

const (
	MinDifficulty     = 1
	MaxDifficulty     = 5
	DefaultDifficulty = 3

	// MinSampleSize is the number of answers needed before difficulty
	// moves away from the default.
	MinSampleSize = 5

	DefaultWindow       = 20
	DefaultRecentWindow = 10

	// HintPenalty is the fraction of accuracy lost per average hint.
	HintPenalty = 0.10

	// RecentWeight is the share of recent accuracy in the blend.
	RecentWeight = 0.6

	increaseAt = 0.8
	decreaseAt = 0.5
)

// ErrInvalidDifficulty is returned for a current difficulty outside 1-5.
var ErrInvalidDifficulty = errors.Wrap(apperr.ErrValidation, "difficulty out of range")

// Metrics summarize a rolling window of answers.
type Metrics struct {
	TotalQuestions      int           `json:"total_questions"`
	CorrectAnswers      int           `json:"correct_answers"`
	HintsUsed           int           `json:"hints_used"`
	AverageTimeToAnswer time.Duration `json:"average_time_to_answer"`
	RecentAccuracy      float64       `json:"recent_accuracy"`
}

// MetricsFromAnswers builds Metrics from answers ordered newest first.
// Only the first window answers count; the first recent of those give
// RecentAccuracy.
func MetricsFromAnswers(answers []store.AnswerRecord, window, recent int) Metrics {
	if window > 0 && len(answers) > window {
		answers = answers[:window]
	}

	var (
		m        Metrics
		timed    int
		totalDur time.Duration
	)
	for _, a := range answers {
		m.TotalQuestions++
		if a.IsCorrect {
			m.CorrectAnswers++
		}
		m.HintsUsed += a.HintsUsed
		if a.TimeToAnswer != nil {
			timed++
			totalDur += *a.TimeToAnswer
		}
	}
	if timed > 0 {
		m.AverageTimeToAnswer = totalDur / time.Duration(timed)
	}

	if recent > len(answers) {
		recent = len(answers)
	}
	if recent > 0 {
		correct := 0
		for _, a := range answers[:recent] {
			if a.IsCorrect {
				correct++
			}
		}
		m.RecentAccuracy = float64(correct) / float64(recent)
	}
	return m
}

// HasSufficientSampleSize reports whether m holds enough answers to adjust.
func HasSufficientSampleSize(m Metrics) bool {
	return m.TotalQuestions >= MinSampleSize
}

// ApplyHintPenalty lowers score by HintPenalty per average hint, floored
// at zero.
func ApplyHintPenalty(score, avgHints float64) float64 {
	return math.Max(0, score*(1-avgHints*HintPenalty))
}

// CalculateEffectiveAccuracy is the hint-penalized accuracy, blended with
// recent accuracy when there is any.
func CalculateEffectiveAccuracy(m Metrics) float64 {
	if m.TotalQuestions <= 0 {
		return 0
	}
	total := float64(m.TotalQuestions)
	eff := ApplyHintPenalty(float64(m.CorrectAnswers)/total, float64(m.HintsUsed)/total)
	if m.RecentAccuracy > 0 {
		eff = (1-RecentWeight)*eff + RecentWeight*m.RecentAccuracy
	}
	return eff
}

// CalculateDifficulty maps effective accuracy to a difficulty level.
// Without enough answers it returns DefaultDifficulty.
func CalculateDifficulty(m Metrics) int {
	if !HasSufficientSampleSize(m) {
		return DefaultDifficulty
	}
	acc := CalculateEffectiveAccuracy(m)
	switch {
	case acc >= 0.9:
		return 5
	case acc >= 0.8:
		return 4
	case acc >= 0.6:
		return 3
	case acc >= 0.4:
		return 2
	default:
		return 1
	}
}

// ShouldAdjust reports whether difficulty should move one step from current.
func ShouldAdjust(current int, m Metrics) (bool, error) {
	next, err := GetNextDifficulty(current, m)
	if err != nil {
		return false, err
	}
	return next != current, nil
}

// GetNextDifficulty steps current up on strong performance and down on
// weak performance, one level at a time within 1-5.
func GetNextDifficulty(current int, m Metrics) (int, error) {
	if current < MinDifficulty || current > MaxDifficulty {
		return 0, errors.Wrapf(ErrInvalidDifficulty, "got %d", current)
	}
	if !HasSufficientSampleSize(m) {
		return current, nil
	}
	acc := CalculateEffectiveAccuracy(m)
	switch {
	case acc >= increaseAt && current < MaxDifficulty:
		return current + 1, nil
	case acc < decreaseAt && current > MinDifficulty:
		return current - 1, nil
	}
	return current, nil
}
