package store

import (
	"time"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
)

// AnswerDepth is the externally classified depth of understanding shown by
// an answer.
type AnswerDepth string

const (
	DepthNone    AnswerDepth = "NONE"
	DepthShallow AnswerDepth = "SHALLOW"
	DepthDeep    AnswerDepth = "DEEP"
)

// ParseAnswerDepth validates a depth label.
func ParseAnswerDepth(s string) (AnswerDepth, error) {
	switch d := AnswerDepth(s); d {
	case DepthNone, DepthShallow, DepthDeep:
		return d, nil
	}
	return "", errors.Wrapf(apperr.ErrValidation, "unknown answer depth %q", s)
}

// TopicStatus is the lifecycle state of a topic.
type TopicStatus string

const (
	TopicQueued    TopicStatus = "QUEUED"
	TopicActive    TopicStatus = "ACTIVE"
	TopicCompleted TopicStatus = "COMPLETED"
	TopicArchived  TopicStatus = "ARCHIVED"
)

// CardType is the scope a review card covers.
type CardType string

const (
	CardTopic    CardType = "TOPIC"
	CardSubtopic CardType = "SUBTOPIC"
	CardConcept  CardType = "CONCEPT"
)

// ParseCardType validates a card type label.
func ParseCardType(s string) (CardType, error) {
	switch c := CardType(s); c {
	case CardTopic, CardSubtopic, CardConcept:
		return c, nil
	}
	return "", errors.Wrapf(apperr.ErrValidation, "unknown card type %q", s)
}

// CardState is the scheduler-internal learning state of a card.
type CardState string

const (
	StateNew        CardState = "NEW"
	StateLearning   CardState = "LEARNING"
	StateReview     CardState = "REVIEW"
	StateRelearning CardState = "RELEARNING"
)

// CardStatus is the coarse label shown to learners.
type CardStatus string

const (
	StatusNew       CardStatus = "NEW"
	StatusLearning  CardStatus = "LEARNING"
	StatusGraduated CardStatus = "GRADUATED"
	StatusLapsed    CardStatus = "LAPSED"
)

// AnswerRecord is one immutable learner answer.
type AnswerRecord struct {
	ID           string         `json:"id"`
	Sequence     int64          `json:"sequence"`
	QuestionID   string         `json:"question_id"`
	UserID       string         `json:"user_id"`
	SessionID    string         `json:"session_id,omitempty"`
	TopicID      string         `json:"topic_id"`
	SubtopicID   string         `json:"subtopic_id,omitempty"`
	ConceptID    string         `json:"concept_id,omitempty"` // empty when the answer is not tied to a concept
	IsCorrect    bool           `json:"is_correct"`
	Depth        AnswerDepth    `json:"depth"`
	HintsUsed    int            `json:"hints_used"`
	TimeToAnswer *time.Duration `json:"time_to_answer,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Topic is a learner's instance of a curriculum topic.
type Topic struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	Name              string      `json:"name"`
	MasteryPercentage int         `json:"mastery_percentage"`
	Status            TopicStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Subtopic is an ordered unit inside a topic.
type Subtopic struct {
	ID                string `json:"id"`
	TopicID           string `json:"topic_id"`
	Name              string `json:"name"`
	Order             int    `json:"order"`
	MasteryPercentage int    `json:"mastery_percentage"`
	IsLocked          bool   `json:"is_locked"`
}

// Concept is a single idea taught inside a subtopic.
type Concept struct {
	ID         string     `json:"id"`
	SubtopicID string     `json:"subtopic_id,omitempty"`
	Name       string     `json:"name"`
	Order      int        `json:"order"`
	IsMastered bool       `json:"is_mastered"`
	MasteredAt *time.Time `json:"mastered_at,omitempty"`
}

// ReviewCard is the persisted spaced-repetition state of one reviewable
// item. Version increases on every successful update.
type ReviewCard struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TopicID       string     `json:"topic_id"`
	SubtopicID    string     `json:"subtopic_id,omitempty"`
	ConceptID     string     `json:"concept_id,omitempty"`
	Type          CardType   `json:"type"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         CardState  `json:"state"`
	LastReviewed  *time.Time `json:"last_reviewed,omitempty"`
	NextReview    time.Time  `json:"next_review"`
	LastRating    *int       `json:"last_rating,omitempty"`
	Status        CardStatus `json:"status"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
