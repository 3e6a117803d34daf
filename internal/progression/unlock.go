package progression

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/store"
)

const (
	// UnlockThreshold is the subtopic mastery at which the next subtopic
	// opens.
	UnlockThreshold = 70

	// CompletionThreshold is the topic mastery at which a topic counts as
	// complete.
	CompletionThreshold = 100
)

// ReviewCounter counts due reviews scoped to one topic.
type ReviewCounter interface {
	CountReviewsDueForTopic(ctx context.Context, userID, topicID string) (int, error)
}

// Service drives the lock state of a topic's subtopics.
type Service struct {
	curriculum store.CurriculumRepo
	reviews    ReviewCounter
	log        *logger.Logger
	locks      *topicLocks
}

// NewService creates a progression service. reviews may be nil, in which
// case no reviews are ever reported due.
func NewService(curriculum store.CurriculumRepo, reviews ReviewCounter, log *logger.Logger) *Service {
	return &Service{
		curriculum: curriculum,
		reviews:    reviews,
		log:        logger.OrNop(log).With("component", "progression"),
		locks:      newTopicLocks(),
	}
}

// ShouldUnlock reports whether mastery has reached the unlock threshold.
func ShouldUnlock(mastery int) bool {
	return mastery >= UnlockThreshold
}

// InitialLockState returns the lock flag for the subtopic at position
// (0-based, in curriculum order) of a new topic. Only the first is open.
func InitialLockState(position int) bool {
	return position > 0
}

// IsTopicComplete reports whether a topic is finished, either by mastery or
// by an explicit status.
func IsTopicComplete(t store.Topic) bool {
	return t.MasteryPercentage >= CompletionThreshold || t.Status == store.TopicCompleted
}

// ShouldUnlockNextSubtopic reports whether the subtopic's stored mastery
// has reached the unlock threshold.
func (s *Service) ShouldUnlockNextSubtopic(ctx context.Context, subtopicID string) (bool, error) {
	sub, err := s.curriculum.GetSubtopic(ctx, subtopicID)
	if err != nil {
		return false, err
	}
	return ShouldUnlock(sub.MasteryPercentage), nil
}

// UnlockNextSubtopic opens the subtopic directly after subtopicID when
// subtopicID is open and at or above the threshold. At most one subtopic is
// unlocked per call. It returns the unlocked subtopic, or nil when nothing
// changed.
func (s *Service) UnlockNextSubtopic(ctx context.Context, subtopicID string) (*store.Subtopic, error) {
	sub, err := s.curriculum.GetSubtopic(ctx, subtopicID)
	if err != nil {
		return nil, err
	}

	release := s.locks.Lock(sub.TopicID)
	defer release()

	// Re-read under the topic lock; mastery may have moved since.
	sub, err = s.curriculum.GetSubtopic(ctx, subtopicID)
	if err != nil {
		return nil, err
	}
	if sub.IsLocked || !ShouldUnlock(sub.MasteryPercentage) {
		return nil, nil
	}

	subtopics, err := s.curriculum.ListSubtopics(ctx, sub.TopicID)
	if err != nil {
		return nil, err
	}
	next := successor(subtopics, sub.Order)
	if next == nil || !next.IsLocked {
		return nil, nil
	}

	changed, err := s.curriculum.UnlockSubtopic(ctx, next.ID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	next.IsLocked = false
	s.log.Info("subtopic unlocked",
		"topic_id", sub.TopicID,
		"trigger_subtopic_id", sub.ID,
		"trigger_mastery", sub.MasteryPercentage,
		"unlocked_subtopic_id", next.ID)
	return next, nil
}

// UnlockNext performs one unlock step for a topic after a whole-topic
// recompute. The trigger is the last unlocked subtopic in order, so at most
// one subtopic opens per call. It returns nil when nothing changed.
func (s *Service) UnlockNext(ctx context.Context, topicID string) (*store.Subtopic, error) {
	subtopics, err := s.curriculum.ListSubtopics(ctx, topicID)
	if err != nil {
		return nil, err
	}
	var frontier *store.Subtopic
	for i := range subtopics {
		if !subtopics[i].IsLocked {
			frontier = &subtopics[i]
		}
	}
	if frontier == nil {
		return nil, nil
	}
	return s.UnlockNextSubtopic(ctx, frontier.ID)
}

// successor returns the subtopic with the lowest order above order.
// subtopics must be sorted by order.
func successor(subtopics []store.Subtopic, order int) *store.Subtopic {
	for i := range subtopics {
		if subtopics[i].Order > order {
			next := subtopics[i]
			return &next
		}
	}
	return nil
}

// InitializeTopic creates a topic and its subtopics with the initial lock
// state: the lowest-order subtopic open, all others locked. On success
// subtopics holds the created rows sorted by order.
func (s *Service) InitializeTopic(ctx context.Context, topic *store.Topic, subtopics []store.Subtopic) error {
	sorted := make([]store.Subtopic, len(subtopics))
	copy(sorted, subtopics)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Order == sorted[i-1].Order {
			return errors.Wrapf(apperr.ErrValidation, "duplicate subtopic order %d", sorted[i].Order)
		}
	}

	if topic.Status == "" {
		topic.Status = store.TopicActive
	}
	if err := s.curriculum.CreateTopic(ctx, topic); err != nil {
		return err
	}
	for i := range sorted {
		sorted[i].TopicID = topic.ID
		sorted[i].IsLocked = InitialLockState(i)
		sorted[i].MasteryPercentage = 0
		if err := s.curriculum.CreateSubtopic(ctx, &sorted[i]); err != nil {
			return err
		}
	}
	copy(subtopics, sorted)
	return nil
}
