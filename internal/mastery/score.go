package mastery

import "math"

const (
	// Weights of the mastery components. They sum to 1.
	AccuracyWeight = 0.4
	DepthWeight    = 0.3
	RecencyWeight  = 0.2
	NoHintsWeight  = 0.1

	// HintCost is the no-hints score lost per average hint per answer.
	HintCost = 25.0

	// DecayHalfLifeDays is the half-life of the recency decay.
	DecayHalfLifeDays = 7.0

	// MaxDecay caps how much of a value recency decay may remove.
	MaxDecay = 0.3
)

// Metrics are the answer counts a mastery score is computed from.
type Metrics struct {
	CorrectAnswers        int
	TotalAnswers          int
	DeepAnswers           int
	HintsUsed             int
	DaysSinceLastActivity int
}

// CalculateWeightedMastery combines accuracy, depth, recency and hint usage
// into a 0-100 score. No answers means no mastery.
func CalculateWeightedMastery(m Metrics) int {
	if m.TotalAnswers <= 0 {
		return 0
	}
	total := float64(m.TotalAnswers)

	accuracy := 100 * float64(m.CorrectAnswers) / total
	depth := 100 * float64(m.DeepAnswers) / total
	recency := ApplyRecencyDecay(100, m.DaysSinceLastActivity)
	noHints := math.Max(0, 100-HintCost*(float64(m.HintsUsed)/total))

	score := AccuracyWeight*accuracy +
		DepthWeight*depth +
		RecencyWeight*recency +
		NoHintsWeight*noHints
	return int(math.Round(clamp(score, 0, 100)))
}

// ApplyRecencyDecay shrinks value by an exponential half-life decay of
// daysSinceActivity, never removing more than MaxDecay of it.
func ApplyRecencyDecay(value float64, daysSinceActivity int) float64 {
	if daysSinceActivity <= 0 {
		return value
	}
	factor := math.Pow(0.5, float64(daysSinceActivity)/DecayHalfLifeDays)
	decay := math.Min(1-factor, MaxDecay)
	return value * (1 - decay)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
