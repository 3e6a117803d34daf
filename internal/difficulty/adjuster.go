package difficulty

import (
	"context"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/store"
)

// Scope narrows the answer window. SubtopicID wins over TopicID; both
// empty means all of the user's answers.
type Scope struct {
	TopicID    string
	SubtopicID string
}

// Recommendation is the adjuster's verdict for the next question.
type Recommendation struct {
	Current           int     `json:"current"`
	Next              int     `json:"next"`
	ShouldAdjust      bool    `json:"should_adjust"`
	Calculated        int     `json:"calculated"`
	EffectiveAccuracy float64 `json:"effective_accuracy"`
	SufficientData    bool    `json:"sufficient_data"`
	Metrics           Metrics `json:"metrics"`
}

// Adjuster reads answer windows and recommends difficulty changes.
type Adjuster struct {
	answers store.AnswerRepo
	window  int
	recent  int
	log     *logger.Logger
}

// NewAdjuster creates an adjuster. Non-positive window sizes fall back to
// the defaults.
func NewAdjuster(answers store.AnswerRepo, window, recent int, log *logger.Logger) *Adjuster {
	if window <= 0 {
		window = DefaultWindow
	}
	if recent <= 0 {
		recent = DefaultRecentWindow
	}
	return &Adjuster{
		answers: answers,
		window:  window,
		recent:  recent,
		log:     logger.OrNop(log).With("component", "difficulty"),
	}
}

// Recommend loads the user's most recent answers in scope and decides the
// next difficulty relative to current.
func (a *Adjuster) Recommend(ctx context.Context, userID string, scope Scope, current int) (Recommendation, error) {
	if current < MinDifficulty || current > MaxDifficulty {
		return Recommendation{}, errors.Wrapf(ErrInvalidDifficulty, "got %d", current)
	}
	if userID == "" {
		return Recommendation{}, errors.Wrap(apperr.ErrValidation, "user id is required")
	}

	find := store.FindAnswers{UserID: userID, Limit: a.window, NewestFirst: true}
	if scope.SubtopicID != "" {
		find.SubtopicID = scope.SubtopicID
	} else {
		find.TopicID = scope.TopicID
	}
	answers, err := a.answers.ListAnswers(ctx, find)
	if err != nil {
		return Recommendation{}, err
	}

	m := MetricsFromAnswers(answers, a.window, a.recent)
	next, err := GetNextDifficulty(current, m)
	if err != nil {
		return Recommendation{}, err
	}
	rec := Recommendation{
		Current:           current,
		Next:              next,
		ShouldAdjust:      next != current,
		Calculated:        CalculateDifficulty(m),
		EffectiveAccuracy: CalculateEffectiveAccuracy(m),
		SufficientData:    HasSufficientSampleSize(m),
		Metrics:           m,
	}
	if rec.ShouldAdjust {
		a.log.Debug("difficulty adjusted", "user_id", userID, "from", current, "to", next,
			"effective_accuracy", rec.EffectiveAccuracy)
	}
	return rec, nil
}
