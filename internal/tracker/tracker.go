// Package tracker ingests learner answers and drives the follow-up work:
// mastery recomputation, subtopic unlocks and review card creation.
package tracker

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/mastery"
	"github.com/abhisek/tutorcore/internal/progression"
	"github.com/abhisek/tutorcore/internal/spacedrep"
	"github.com/abhisek/tutorcore/internal/store"
)

// DepthClassifier judges how deep the understanding behind an answer is.
// It is consulted only when the caller did not supply a depth.
type DepthClassifier interface {
	ClassifyDepth(ctx context.Context, in AnswerInput) (store.AnswerDepth, error)
}

// AnswerInput is a learner answer as submitted by a client.
type AnswerInput struct {
	QuestionID   string         `json:"question_id"`
	UserID       string         `json:"user_id"`
	SessionID    string         `json:"session_id"`
	TopicID      string         `json:"topic_id"`
	SubtopicID   string         `json:"subtopic_id"`
	ConceptID    string         `json:"concept_id,omitempty"`
	IsCorrect    bool           `json:"is_correct"`
	Depth        string         `json:"depth,omitempty"`
	HintsUsed    int            `json:"hints_used"`
	TimeToAnswer *time.Duration `json:"-"`
}

func (in AnswerInput) validate() error {
	switch {
	case in.UserID == "":
		return errors.Wrap(apperr.ErrValidation, "user id is required")
	case in.QuestionID == "":
		return errors.Wrap(apperr.ErrValidation, "question id is required")
	case in.SubtopicID == "":
		return errors.Wrap(apperr.ErrValidation, "subtopic id is required")
	case in.HintsUsed < 0:
		return errors.Wrapf(apperr.ErrValidation, "hints used %d is negative", in.HintsUsed)
	case in.TimeToAnswer != nil && *in.TimeToAnswer < 0:
		return errors.Wrap(apperr.ErrValidation, "time to answer is negative")
	}
	return nil
}

// Outcome reports everything that changed because of one answer.
type Outcome struct {
	Answer         store.AnswerRecord `json:"-"`
	AnswerID       string             `json:"answer_id"`
	Mastery        mastery.Update     `json:"mastery"`
	Unlocked       *store.Subtopic    `json:"unlocked,omitempty"`
	ReviewCards    []store.ReviewCard `json:"review_cards,omitempty"`
	TopicCompleted bool               `json:"topic_completed"`
}

// Tracker records answers and keeps derived progress up to date.
type Tracker struct {
	answers     store.AnswerRepo
	curriculum  store.CurriculumRepo
	calc        *mastery.Calculator
	progression *progression.Service
	queue       *spacedrep.Queue
	classifier  DepthClassifier
	log         *logger.Logger

	// Now stamps recorded answers.
	Now func() time.Time
}

// New creates a tracker. classifier may be nil, in which case answers
// without an explicit depth are recorded as NONE.
func New(
	answers store.AnswerRepo,
	curriculum store.CurriculumRepo,
	calc *mastery.Calculator,
	prog *progression.Service,
	queue *spacedrep.Queue,
	classifier DepthClassifier,
	log *logger.Logger,
) *Tracker {
	return &Tracker{
		answers:     answers,
		curriculum:  curriculum,
		calc:        calc,
		progression: prog,
		queue:       queue,
		classifier:  classifier,
		log:         logger.OrNop(log).With("component", "tracker"),
		Now:         time.Now,
	}
}

// RecordAnswer validates and stores an answer, then recomputes mastery,
// unlocks the next subtopic when the threshold is reached and puts newly
// mastered material under review.
func (t *Tracker) RecordAnswer(ctx context.Context, in AnswerInput) (*Outcome, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sub, err := t.curriculum.GetSubtopic(ctx, in.SubtopicID)
	if err != nil {
		return nil, err
	}
	if in.TopicID != "" && in.TopicID != sub.TopicID {
		return nil, errors.Wrapf(apperr.ErrValidation, "subtopic %s is not part of topic %s", sub.ID, in.TopicID)
	}
	if sub.IsLocked {
		return nil, errors.Wrapf(apperr.ErrValidation, "subtopic %s is locked", sub.ID)
	}
	topic, err := t.curriculum.GetTopic(ctx, sub.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.UserID != in.UserID {
		return nil, errors.Wrapf(apperr.ErrValidation, "topic %s does not belong to user", topic.ID)
	}
	depth, err := t.depth(ctx, in)
	if err != nil {
		return nil, err
	}

	rec := store.AnswerRecord{
		QuestionID:   in.QuestionID,
		UserID:       in.UserID,
		SessionID:    in.SessionID,
		TopicID:      sub.TopicID,
		SubtopicID:   sub.ID,
		ConceptID:    in.ConceptID,
		IsCorrect:    in.IsCorrect,
		Depth:        depth,
		HintsUsed:    in.HintsUsed,
		TimeToAnswer: in.TimeToAnswer,
		CreatedAt:    t.Now().UTC(),
	}
	if err := t.answers.AppendAnswer(ctx, &rec); err != nil {
		return nil, err
	}
	t.log.Debug("answer recorded",
		"user_id", in.UserID,
		"session_id", in.SessionID,
		"subtopic_id", sub.ID,
		"correct", in.IsCorrect,
		"depth", depth)

	upd, err := t.calc.UpdateMastery(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Answer: rec, AnswerID: rec.ID, Mastery: *upd}

	if out.Unlocked, err = t.progression.UnlockNextSubtopic(ctx, sub.ID); err != nil {
		return nil, err
	}

	// Cards are created idempotently on every answer at or above the
	// threshold, so a crossing made by a recompute still gets its card.
	if progression.ShouldUnlock(upd.SubtopicMastery) {
		card, err := t.schedule(ctx, spacedrep.ReviewItemSpec{
			UserID:     in.UserID,
			Type:       store.CardSubtopic,
			TopicID:    sub.TopicID,
			SubtopicID: sub.ID,
		})
		if err != nil {
			return nil, err
		}
		if card != nil {
			out.ReviewCards = append(out.ReviewCards, *card)
		}
	}

	if upd.TopicMastery >= progression.CompletionThreshold {
		if topic.Status != store.TopicCompleted {
			if err := t.curriculum.UpdateTopicStatus(ctx, topic.ID, store.TopicCompleted); err != nil {
				return nil, err
			}
			out.TopicCompleted = true
			t.log.Info("topic completed", "user_id", in.UserID, "topic_id", topic.ID)
		}

		card, err := t.schedule(ctx, spacedrep.ReviewItemSpec{
			UserID:  in.UserID,
			Type:    store.CardTopic,
			TopicID: topic.ID,
		})
		if err != nil {
			return nil, err
		}
		if card != nil {
			out.ReviewCards = append(out.ReviewCards, *card)
		}
	}
	return out, nil
}

func (t *Tracker) depth(ctx context.Context, in AnswerInput) (store.AnswerDepth, error) {
	if in.Depth != "" {
		return store.ParseAnswerDepth(in.Depth)
	}
	if t.classifier == nil {
		return store.DepthNone, nil
	}
	d, err := t.classifier.ClassifyDepth(ctx, in)
	if err != nil {
		return "", errors.Wrap(err, "classify answer depth")
	}
	if _, err := store.ParseAnswerDepth(string(d)); err != nil {
		return "", err
	}
	return d, nil
}

// schedule returns the card only when this call created it.
func (t *Tracker) schedule(ctx context.Context, spec spacedrep.ReviewItemSpec) (*store.ReviewCard, error) {
	card, created, err := t.queue.CreateReviewItem(ctx, spec)
	if err != nil || !created {
		return nil, err
	}
	return card, nil
}
