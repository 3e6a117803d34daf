package spacedrep

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/store"
)

// DefaultSessionCap bounds the reviews handed out per session.
const DefaultSessionCap = 20

// Queue serves due review cards and records review outcomes.
type Queue struct {
	cards      store.ReviewCardRepo
	sched      *Scheduler
	sessionCap int
	log        *logger.Logger

	// Now returns the reference time for due checks and scheduling.
	Now func() time.Time
}

// NewQueue creates a review queue. A non-positive sessionCap selects
// DefaultSessionCap.
func NewQueue(cards store.ReviewCardRepo, sched *Scheduler, sessionCap int, log *logger.Logger) *Queue {
	if sessionCap <= 0 {
		sessionCap = DefaultSessionCap
	}
	return &Queue{
		cards:      cards,
		sched:      sched,
		sessionCap: sessionCap,
		log:        logger.OrNop(log).With("component", "review_queue"),
		Now:        time.Now,
	}
}

// GetReviewsDue returns up to limit due, non-graduated cards, oldest due
// first. A non-positive limit selects the session cap.
func (q *Queue) GetReviewsDue(ctx context.Context, userID string, limit int) ([]store.ReviewCard, error) {
	if limit <= 0 {
		limit = q.sessionCap
	}
	return q.cards.ListDueReviewCards(ctx, store.FindDueReviews{
		UserID: userID,
		Now:    q.Now(),
		Limit:  limit,
	})
}

// CountReviewsDue counts every due, non-graduated card of the user.
func (q *Queue) CountReviewsDue(ctx context.Context, userID string) (int, error) {
	return q.cards.CountDueReviewCards(ctx, store.FindDueReviews{UserID: userID, Now: q.Now()})
}

// CountReviewsDueForTopic counts due, non-graduated cards within a topic.
func (q *Queue) CountReviewsDueForTopic(ctx context.Context, userID, topicID string) (int, error) {
	return q.cards.CountDueReviewCards(ctx, store.FindDueReviews{UserID: userID, TopicID: topicID, Now: q.Now()})
}

// ReviewItemSpec identifies an item to put under spaced repetition.
type ReviewItemSpec struct {
	UserID     string
	Type       store.CardType
	TopicID    string
	SubtopicID string
	ConceptID  string
}

func (s ReviewItemSpec) scope() (store.CardScope, error) {
	if s.UserID == "" || s.TopicID == "" {
		return store.CardScope{}, errors.Wrap(apperr.ErrValidation, "user id and topic id are required")
	}
	scope := store.CardScope{UserID: s.UserID, Type: s.Type, TopicID: s.TopicID}
	switch s.Type {
	case store.CardTopic:
	case store.CardSubtopic:
		if s.SubtopicID == "" {
			return store.CardScope{}, errors.Wrap(apperr.ErrValidation, "subtopic card needs a subtopic id")
		}
		scope.SubtopicID = s.SubtopicID
	case store.CardConcept:
		if s.ConceptID == "" {
			return store.CardScope{}, errors.Wrap(apperr.ErrValidation, "concept card needs a concept id")
		}
		scope.SubtopicID = s.SubtopicID
		scope.ConceptID = s.ConceptID
	default:
		return store.CardScope{}, errors.Wrapf(apperr.ErrValidation, "unknown card type %q", s.Type)
	}
	return scope, nil
}

// CreateReviewItem returns the card for spec, creating a fresh one if the
// user has none for that scope yet. created reports whether a card was
// inserted.
func (q *Queue) CreateReviewItem(ctx context.Context, spec ReviewItemSpec) (card *store.ReviewCard, created bool, err error) {
	scope, err := spec.scope()
	if err != nil {
		return nil, false, err
	}
	if existing, err := q.cards.FindReviewCard(ctx, scope); err != nil || existing != nil {
		return existing, false, err
	}

	c := q.sched.CreateCard(q.Now())
	c.UserID = scope.UserID
	c.Type = scope.Type
	c.TopicID = scope.TopicID
	c.SubtopicID = scope.SubtopicID
	c.ConceptID = scope.ConceptID
	if err := q.cards.CreateReviewCard(ctx, &c); err != nil {
		// A concurrent create for the same scope wins the unique index.
		if existing, ferr := q.cards.FindReviewCard(ctx, scope); ferr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	q.log.Info("review card created", "user_id", c.UserID, "card_id", c.ID, "type", c.Type)
	return &c, true, nil
}

// ReviewResult is the outcome of RecordReview.
type ReviewResult struct {
	ReviewID       string           `json:"review_id"`
	NextReviewDate time.Time        `json:"next_review_date"`
	NewStatus      store.CardStatus `json:"new_status"`
	State          store.CardState  `json:"state"`
	Reps           int              `json:"reps"`
	Lapses         int              `json:"lapses"`
}

// RecordReview applies rating to the card and persists the result. A
// concurrent review of the same card surfaces as apperr.ErrConflict; the
// caller may retry.
func (q *Queue) RecordReview(ctx context.Context, reviewID string, rating int) (ReviewResult, error) {
	r, err := ParseRating(rating)
	if err != nil {
		return ReviewResult{}, err
	}
	card, err := q.cards.GetReviewCard(ctx, reviewID)
	if err != nil {
		return ReviewResult{}, err
	}

	next, err := q.sched.ScheduleNextReview(*card, r, q.Now())
	if err != nil {
		return ReviewResult{}, err
	}
	if err := q.cards.UpdateReviewCard(ctx, &next); err != nil {
		if apperr.IsConflict(err) {
			q.log.Warn("review lost update", "card_id", reviewID, "user_id", card.UserID)
		}
		return ReviewResult{}, err
	}

	q.log.Info("review recorded",
		"card_id", next.ID,
		"user_id", next.UserID,
		"rating", r.String(),
		"state", next.State,
		"next_review", next.NextReview)
	return ReviewResult{
		ReviewID:       next.ID,
		NextReviewDate: next.NextReview,
		NewStatus:      next.Status,
		State:          next.State,
		Reps:           next.Reps,
		Lapses:         next.Lapses,
	}, nil
}
