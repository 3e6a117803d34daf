package spacedrep

import (
	"time"

	"github.com/open-spaced-repetition/go-fsrs"
	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/store"
)

// DefaultDesiredRetention is the recall probability reviews are scheduled
// to land at.
const DefaultDesiredRetention = 0.9

// Scheduler applies FSRS to review cards. It holds only immutable
// parameters, so one Scheduler may be shared.
type Scheduler struct {
	params fsrs.Parameters
}

// NewScheduler creates a scheduler targeting desiredRetention. Values
// outside (0,1) select DefaultDesiredRetention.
func NewScheduler(desiredRetention float64) *Scheduler {
	if desiredRetention <= 0 || desiredRetention >= 1 {
		desiredRetention = DefaultDesiredRetention
	}
	params := fsrs.DefaultParam()
	params.RequestRetention = desiredRetention
	return &Scheduler{params: params}
}

// DesiredRetention returns the retention target.
func (s *Scheduler) DesiredRetention() float64 {
	return s.params.RequestRetention
}

// CreateCard returns a fresh card due now.
func (s *Scheduler) CreateCard(now time.Time) store.ReviewCard {
	return store.ReviewCard{
		State:      store.StateNew,
		Status:     store.StatusNew,
		NextReview: now,
	}
}

// ScheduleNextReview returns card after a review rated rating at now. The
// input card is not modified and the result depends only on the arguments.
func (s *Scheduler) ScheduleNextReview(card store.ReviewCard, rating Rating, now time.Time) (store.ReviewCard, error) {
	if !rating.Valid() {
		return card, errors.Wrapf(ErrInvalidRating, "got %d", int(rating))
	}

	scheduled := s.params.Repeat(toFSRS(card), now)[fsrs.Rating(rating)].Card

	next := card
	next.Stability = scheduled.Stability
	next.Difficulty = scheduled.Difficulty
	next.ElapsedDays = int(scheduled.ElapsedDays)
	next.ScheduledDays = int(scheduled.ScheduledDays)
	next.State = fromFSRSState(scheduled.State)
	next.NextReview = scheduled.Due
	next.Reps = card.Reps + 1
	if card.State == store.StateReview && rating == Again {
		next.Lapses = card.Lapses + 1
	}
	reviewed := now
	next.LastReviewed = &reviewed
	r := int(rating)
	next.LastRating = &r
	next.Status = StateToStatus(next.State)
	return next, nil
}

// StateToStatus projects a scheduler state onto the learner-facing status.
func StateToStatus(state store.CardState) store.CardStatus {
	switch state {
	case store.StateLearning:
		return store.StatusLearning
	case store.StateReview:
		return store.StatusGraduated
	case store.StateRelearning:
		return store.StatusLapsed
	default:
		return store.StatusNew
	}
}

func toFSRS(c store.ReviewCard) fsrs.Card {
	card := fsrs.Card{
		Due:           c.NextReview,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   uint64(max(c.ElapsedDays, 0)),
		ScheduledDays: uint64(max(c.ScheduledDays, 0)),
		Reps:          uint64(max(c.Reps, 0)),
		Lapses:        uint64(max(c.Lapses, 0)),
		State:         toFSRSState(c.State),
	}
	if c.LastReviewed != nil {
		card.LastReview = *c.LastReviewed
	}
	return card
}

func toFSRSState(s store.CardState) fsrs.State {
	switch s {
	case store.StateLearning:
		return fsrs.Learning
	case store.StateReview:
		return fsrs.Review
	case store.StateRelearning:
		return fsrs.Relearning
	default:
		return fsrs.New
	}
}

func fromFSRSState(s fsrs.State) store.CardState {
	switch s {
	case fsrs.Learning:
		return store.StateLearning
	case fsrs.Review:
		return store.StateReview
	case fsrs.Relearning:
		return store.StateRelearning
	default:
		return store.StateNew
	}
}
