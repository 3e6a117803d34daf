package mastery

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/store"
)

// maxParallelRecompute bounds concurrent subtopic recomputations.
const maxParallelRecompute = 4

// Calculator recomputes and persists mastery from the full answer history.
// Every run starts from scratch, so concurrent runs for the same scope are
// safe and the last write wins with an equally valid value.
type Calculator struct {
	answers    store.AnswerRepo
	curriculum store.CurriculumRepo
	log        *logger.Logger

	// Now returns the reference time for recency decay.
	Now func() time.Time
}

// NewCalculator creates a calculator over the given repositories.
func NewCalculator(answers store.AnswerRepo, curriculum store.CurriculumRepo, log *logger.Logger) *Calculator {
	return &Calculator{
		answers:    answers,
		curriculum: curriculum,
		log:        logger.OrNop(log).With("component", "mastery"),
		Now:        time.Now,
	}
}

// Update is the result of an UpdateMastery call.
type Update struct {
	SubtopicID      string `json:"subtopic_id"`
	SubtopicMastery int    `json:"subtopic_mastery"`
	TopicID         string `json:"topic_id"`
	TopicMastery    int    `json:"topic_mastery"`
}

// CalculateSubtopicMastery recomputes a subtopic's mastery from its answers
// and persists it.
func (c *Calculator) CalculateSubtopicMastery(ctx context.Context, subtopicID string) (int, error) {
	if _, err := c.curriculum.GetSubtopic(ctx, subtopicID); err != nil {
		return 0, err
	}
	return c.recomputeSubtopic(ctx, subtopicID)
}

func (c *Calculator) recomputeSubtopic(ctx context.Context, subtopicID string) (int, error) {
	answers, err := c.answers.ListAnswers(ctx, store.FindAnswers{SubtopicID: subtopicID})
	if err != nil {
		return 0, err
	}
	pct := CalculateWeightedMastery(MetricsFromAnswers(answers, c.Now()))
	if err := c.curriculum.UpdateSubtopicMastery(ctx, subtopicID, pct); err != nil {
		c.log.Error("persist subtopic mastery", "subtopic_id", subtopicID, "error", err)
		return 0, err
	}
	return pct, nil
}

// CalculateTopicMastery recomputes every subtopic of a topic, then the
// concept-weighted topic mastery, persisting all of them.
func (c *Calculator) CalculateTopicMastery(ctx context.Context, topicID string) (int, error) {
	if _, err := c.curriculum.GetTopic(ctx, topicID); err != nil {
		return 0, err
	}
	pct, _, err := c.recomputeTopic(ctx, topicID)
	return pct, err
}

// recomputeTopic returns the topic mastery and the mastery of each subtopic.
func (c *Calculator) recomputeTopic(ctx context.Context, topicID string) (int, map[string]int, error) {
	subtopics, err := c.curriculum.ListSubtopics(ctx, topicID)
	if err != nil {
		return 0, nil, err
	}

	weights := make([]SubtopicWeight, len(subtopics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRecompute)
	for i, sub := range subtopics {
		g.Go(func() error {
			pct, err := c.recomputeSubtopic(gctx, sub.ID)
			if err != nil {
				return err
			}
			concepts, err := c.curriculum.ListConcepts(gctx, sub.ID)
			if err != nil {
				return err
			}
			weights[i] = SubtopicWeight{Mastery: pct, Concepts: len(concepts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	bySubtopic := make(map[string]int, len(subtopics))
	for i, sub := range subtopics {
		bySubtopic[sub.ID] = weights[i].Mastery
	}

	pct := WeightedTopicMastery(weights)
	if err := c.curriculum.UpdateTopicMastery(ctx, topicID, pct); err != nil {
		c.log.Error("persist topic mastery", "topic_id", topicID, "error", err)
		return 0, nil, err
	}
	return pct, bySubtopic, nil
}

// UpdateMastery recomputes a subtopic and its topic.
func (c *Calculator) UpdateMastery(ctx context.Context, subtopicID string) (*Update, error) {
	sub, err := c.curriculum.GetSubtopic(ctx, subtopicID)
	if err != nil {
		return nil, err
	}
	topicPct, bySubtopic, err := c.recomputeTopic(ctx, sub.TopicID)
	if err != nil {
		return nil, err
	}
	subPct := bySubtopic[subtopicID]
	c.log.Debug("mastery updated",
		"subtopic_id", subtopicID, "subtopic_mastery", subPct,
		"topic_id", sub.TopicID, "topic_mastery", topicPct)
	return &Update{
		SubtopicID:      subtopicID,
		SubtopicMastery: subPct,
		TopicID:         sub.TopicID,
		TopicMastery:    topicPct,
	}, nil
}
