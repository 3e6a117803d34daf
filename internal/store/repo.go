package store

import (
	"context"
	"time"
)

// FindAnswers filters answer history. Zero-valued fields are ignored.
type FindAnswers struct {
	UserID      string
	TopicID     string
	SubtopicID  string
	Limit       int  // max results (0 = unlimited)
	NewestFirst bool // default order is oldest first
}

// FindDueReviews selects review cards that are due and not graduated.
type FindDueReviews struct {
	UserID  string
	TopicID string // optional
	Now     time.Time
	Limit   int // max results (0 = unlimited)
}

// CardScope identifies the single card a user may hold for an item.
type CardScope struct {
	UserID     string
	Type       CardType
	TopicID    string
	SubtopicID string
	ConceptID  string
}

// AnswerRepo provides append and query access to answer history.
type AnswerRepo interface {
	// AppendAnswer stores a new answer, assigning its sequence number.
	AppendAnswer(ctx context.Context, a *AnswerRecord) error

	// ListAnswers returns answers matching the filter, ordered by sequence.
	ListAnswers(ctx context.Context, find FindAnswers) ([]AnswerRecord, error)
}

// CurriculumRepo reads the topic tree and writes its derived fields.
type CurriculumRepo interface {
	CreateTopic(ctx context.Context, t *Topic) error
	GetTopic(ctx context.Context, id string) (*Topic, error)
	UpdateTopicMastery(ctx context.Context, id string, pct int) error
	UpdateTopicStatus(ctx context.Context, id string, status TopicStatus) error

	CreateSubtopic(ctx context.Context, s *Subtopic) error
	GetSubtopic(ctx context.Context, id string) (*Subtopic, error)
	// ListSubtopics returns a topic's subtopics ordered by Order.
	ListSubtopics(ctx context.Context, topicID string) ([]Subtopic, error)
	UpdateSubtopicMastery(ctx context.Context, id string, pct int) error
	// UnlockSubtopic clears the lock flag only if it is still set. It
	// reports whether this call performed the transition.
	UnlockSubtopic(ctx context.Context, id string) (bool, error)

	CreateConcept(ctx context.Context, c *Concept) error
	// ListConcepts returns a subtopic's concepts ordered by Order.
	ListConcepts(ctx context.Context, subtopicID string) ([]Concept, error)
}

// ReviewCardRepo persists spaced-repetition cards.
type ReviewCardRepo interface {
	CreateReviewCard(ctx context.Context, c *ReviewCard) error
	GetReviewCard(ctx context.Context, id string) (*ReviewCard, error)
	// FindReviewCard returns the card for scope, or nil if none exists.
	FindReviewCard(ctx context.Context, scope CardScope) (*ReviewCard, error)
	// UpdateReviewCard writes c if the stored version still equals
	// c.Version, then bumps c.Version. A stale version is ErrConflict.
	UpdateReviewCard(ctx context.Context, c *ReviewCard) error
	// ListDueReviewCards returns due cards ordered by NextReview ascending.
	ListDueReviewCards(ctx context.Context, find FindDueReviews) ([]ReviewCard, error)
	CountDueReviewCards(ctx context.Context, find FindDueReviews) (int, error)
}
