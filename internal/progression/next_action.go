package progression

import (
	"context"

	"github.com/abhisek/tutorcore/internal/store"
)

// ActionType is the kind of step recommended to a learner.
type ActionType string

const (
	ActionComplete ActionType = "complete"
	ActionReview   ActionType = "review"
	ActionContinue ActionType = "continue"
	ActionUnlock   ActionType = "unlock"
)

// Action is the single recommended next step for a topic.
type Action struct {
	Type       ActionType `json:"type"`
	TopicID    string     `json:"topic_id"`
	SubtopicID string     `json:"subtopic_id,omitempty"`
	ConceptID  string     `json:"concept_id,omitempty"`
	ReviewsDue int        `json:"reviews_due,omitempty"`
}

// NextAction recommends what the learner should do next in a topic.
func (s *Service) NextAction(ctx context.Context, topicID string) (Action, error) {
	v, err := s.load(ctx, topicID)
	if err != nil {
		return Action{}, err
	}
	return v.nextAction(), nil
}

// topicView is a topic with its subtopics, their concepts and the due
// review count, read once per request.
type topicView struct {
	topic      store.Topic
	subtopics  []store.Subtopic
	concepts   map[string][]store.Concept
	reviewsDue int
}

func (s *Service) load(ctx context.Context, topicID string) (*topicView, error) {
	topic, err := s.curriculum.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	subtopics, err := s.curriculum.ListSubtopics(ctx, topicID)
	if err != nil {
		return nil, err
	}
	v := &topicView{
		topic:     *topic,
		subtopics: subtopics,
		concepts:  make(map[string][]store.Concept, len(subtopics)),
	}
	for _, sub := range subtopics {
		concepts, err := s.curriculum.ListConcepts(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		v.concepts[sub.ID] = concepts
	}
	if s.reviews != nil {
		v.reviewsDue, err = s.reviews.CountReviewsDueForTopic(ctx, topic.UserID, topic.ID)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *topicView) nextAction() Action {
	act := Action{TopicID: v.topic.ID}

	if IsTopicComplete(v.topic) {
		act.Type = ActionComplete
		return act
	}
	if v.reviewsDue > 0 {
		act.Type = ActionReview
		act.ReviewsDue = v.reviewsDue
		return act
	}

	var lastUnlocked *store.Subtopic
	for i := range v.subtopics {
		sub := &v.subtopics[i]
		if sub.IsLocked {
			continue
		}
		lastUnlocked = sub
		if ShouldUnlock(sub.MasteryPercentage) {
			continue
		}
		for _, c := range v.concepts[sub.ID] {
			if !c.IsMastered {
				act.Type = ActionContinue
				act.SubtopicID = sub.ID
				act.ConceptID = c.ID
				return act
			}
		}
	}

	if lastUnlocked != nil && ShouldUnlock(lastUnlocked.MasteryPercentage) {
		if next := successor(v.subtopics, lastUnlocked.Order); next != nil && next.IsLocked {
			act.Type = ActionUnlock
			act.SubtopicID = next.ID
			return act
		}
	}

	for _, sub := range v.subtopics {
		if sub.IsLocked {
			continue
		}
		act.Type = ActionContinue
		act.SubtopicID = sub.ID
		if concepts := v.concepts[sub.ID]; len(concepts) > 0 {
			act.ConceptID = concepts[0].ID
		}
		return act
	}

	act.Type = ActionComplete
	return act
}
