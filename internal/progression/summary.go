package progression

import (
	"context"

	"github.com/abhisek/tutorcore/internal/store"
)

// SubtopicProgress is one subtopic row of a progress summary.
type SubtopicProgress struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Order             int    `json:"order"`
	MasteryPercentage int    `json:"mastery_percentage"`
	IsLocked          bool   `json:"is_locked"`
	Concepts          int    `json:"concepts"`
	MasteredConcepts  int    `json:"mastered_concepts"`
}

// Summary describes a learner's progress through one topic.
type Summary struct {
	TopicID           string             `json:"topic_id"`
	Name              string             `json:"name"`
	Status            store.TopicStatus  `json:"status"`
	MasteryPercentage int                `json:"mastery_percentage"`
	IsComplete        bool               `json:"is_complete"`
	Subtopics         []SubtopicProgress `json:"subtopics"`
	ReviewsDue        int                `json:"reviews_due"`
	NextAction        Action             `json:"next_action"`
}

// ProgressSummary reports a topic's mastery, subtopic lock states, due
// reviews and the recommended next action.
func (s *Service) ProgressSummary(ctx context.Context, topicID string) (*Summary, error) {
	v, err := s.load(ctx, topicID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TopicID:           v.topic.ID,
		Name:              v.topic.Name,
		Status:            v.topic.Status,
		MasteryPercentage: v.topic.MasteryPercentage,
		IsComplete:        IsTopicComplete(v.topic),
		Subtopics:         make([]SubtopicProgress, 0, len(v.subtopics)),
		ReviewsDue:        v.reviewsDue,
		NextAction:        v.nextAction(),
	}
	for _, sub := range v.subtopics {
		row := SubtopicProgress{
			ID:                sub.ID,
			Name:              sub.Name,
			Order:             sub.Order,
			MasteryPercentage: sub.MasteryPercentage,
			IsLocked:          sub.IsLocked,
			Concepts:          len(v.concepts[sub.ID]),
		}
		for _, c := range v.concepts[sub.ID] {
			if c.IsMastered {
				row.MasteredConcepts++
			}
		}
		sum.Subtopics = append(sum.Subtopics, row)
	}
	return sum, nil
}
