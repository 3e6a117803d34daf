package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/mastery"
	"github.com/abhisek/tutorcore/internal/progression"
	"github.com/abhisek/tutorcore/internal/spacedrep"
	"github.com/abhisek/tutorcore/internal/store"
	"github.com/abhisek/tutorcore/internal/store/storetest"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *store.Store
	seeded  storetest.Seeded
	calc    *mastery.Calculator
	queue   *spacedrep.Queue
	tracker *Tracker
}

func newFixture(t *testing.T, classifier DepthClassifier, concepts ...int) *fixture {
	t.Helper()
	s := storetest.Open(t)
	seeded := storetest.Seed(t, s.Curriculum(), storetest.Curriculum{UserID: "u1", TopicID: "t1", Concepts: concepts})

	clock := func() time.Time { return t0 }
	calc := mastery.NewCalculator(s.Answers(), s.Curriculum(), nil)
	calc.Now = clock
	queue := spacedrep.NewQueue(s.ReviewCards(), spacedrep.NewScheduler(0.9), 0, nil)
	queue.Now = clock
	prog := progression.NewService(s.Curriculum(), queue, nil)

	tr := New(s.Answers(), s.Curriculum(), calc, prog, queue, classifier, nil)
	tr.Now = clock
	return &fixture{store: s, seeded: seeded, calc: calc, queue: queue, tracker: tr}
}

func answer(subtopicID string, correct bool, depth store.AnswerDepth) AnswerInput {
	return AnswerInput{
		QuestionID: "q-" + subtopicID,
		UserID:     "u1",
		SessionID:  "sess",
		TopicID:    "t1",
		SubtopicID: subtopicID,
		IsCorrect:  correct,
		Depth:      string(depth),
	}
}

func TestRecordAnswer_UnlocksAndSchedulesOnce(t *testing.T) {
	f := newFixture(t, nil, 1, 1)
	ctx := context.Background()

	out, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthShallow))
	require.NoError(t, err)
	assert.Equal(t, 70, out.Mastery.SubtopicMastery)
	assert.Equal(t, 35, out.Mastery.TopicMastery)
	require.NotNil(t, out.Unlocked)
	assert.Equal(t, "t1-s1", out.Unlocked.ID)
	require.Len(t, out.ReviewCards, 1)
	assert.Equal(t, store.CardSubtopic, out.ReviewCards[0].Type)
	assert.Equal(t, "t1-s0", out.ReviewCards[0].SubtopicID)
	assert.False(t, out.TopicCompleted)

	out, err = f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthDeep))
	require.NoError(t, err)
	assert.Equal(t, 85, out.Mastery.SubtopicMastery)
	assert.Nil(t, out.Unlocked, "successor is already open")
	assert.Empty(t, out.ReviewCards, "threshold was crossed earlier")

	n, err := f.queue.CountReviewsDue(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordAnswer_SchedulesAfterRecompute(t *testing.T) {
	f := newFixture(t, nil, 1, 1)
	ctx := context.Background()

	require.NoError(t, f.store.Answers().AppendAnswer(ctx, &store.AnswerRecord{
		ID:         "a-import",
		QuestionID: "q-import",
		UserID:     "u1",
		TopicID:    "t1",
		SubtopicID: "t1-s0",
		IsCorrect:  true,
		Depth:      store.DepthShallow,
		CreatedAt:  t0,
	}))
	_, err := f.calc.CalculateTopicMastery(ctx, "t1")
	require.NoError(t, err)

	sub, err := f.store.Curriculum().GetSubtopic(ctx, "t1-s0")
	require.NoError(t, err)
	require.Equal(t, 70, sub.MasteryPercentage, "recompute crossed the threshold")

	out, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthShallow))
	require.NoError(t, err)
	assert.Equal(t, 70, out.Mastery.SubtopicMastery)
	require.Len(t, out.ReviewCards, 1, "missing card is created on the next answer")
	assert.Equal(t, store.CardSubtopic, out.ReviewCards[0].Type)

	card, err := f.store.ReviewCards().FindReviewCard(ctx, store.CardScope{
		UserID:     "u1",
		Type:       store.CardSubtopic,
		TopicID:    "t1",
		SubtopicID: "t1-s0",
	})
	require.NoError(t, err)
	assert.Equal(t, out.ReviewCards[0].ID, card.ID)

	out, err = f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthShallow))
	require.NoError(t, err)
	assert.Empty(t, out.ReviewCards)
}

func TestRecordAnswer_BelowThreshold(t *testing.T) {
	f := newFixture(t, nil, 1, 1)

	out, err := f.tracker.RecordAnswer(context.Background(), answer("t1-s0", false, store.DepthNone))
	require.NoError(t, err)
	assert.Equal(t, 30, out.Mastery.SubtopicMastery)
	assert.Nil(t, out.Unlocked)
	assert.Empty(t, out.ReviewCards)

	sub, err := f.store.Curriculum().GetSubtopic(context.Background(), "t1-s1")
	require.NoError(t, err)
	assert.True(t, sub.IsLocked)
}

func TestRecordAnswer_CompletesTopic(t *testing.T) {
	f := newFixture(t, nil, 2)
	ctx := context.Background()

	out, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthDeep))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Mastery.TopicMastery)
	assert.True(t, out.TopicCompleted)
	require.Len(t, out.ReviewCards, 2)
	assert.Equal(t, store.CardSubtopic, out.ReviewCards[0].Type)
	assert.Equal(t, store.CardTopic, out.ReviewCards[1].Type)

	topic, err := f.store.Curriculum().GetTopic(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, store.TopicCompleted, topic.Status)

	out, err = f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthDeep))
	require.NoError(t, err)
	assert.False(t, out.TopicCompleted, "completion is reported once")
	assert.Empty(t, out.ReviewCards)
}

func TestRecordAnswer_StoresAnswer(t *testing.T) {
	f := newFixture(t, nil, 1)
	ctx := context.Background()
	took := 42 * time.Second

	in := answer("t1-s0", true, store.DepthShallow)
	in.TopicID = ""
	in.HintsUsed = 2
	in.ConceptID = "t1-s0-c0"
	in.TimeToAnswer = &took
	out, err := f.tracker.RecordAnswer(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, out.AnswerID)

	got, err := f.store.Answers().ListAnswers(ctx, store.FindAnswers{SubtopicID: "t1-s0"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].TopicID, "topic id is filled from the subtopic")
	assert.Equal(t, "t1-s0-c0", got[0].ConceptID)
	assert.Equal(t, 2, got[0].HintsUsed)
	require.NotNil(t, got[0].TimeToAnswer)
	assert.Equal(t, took, *got[0].TimeToAnswer)
	assert.True(t, got[0].CreatedAt.Equal(t0))
}

func TestRecordAnswer_Validation(t *testing.T) {
	f := newFixture(t, nil, 1, 1)
	ctx := context.Background()
	negative := -time.Second

	tests := []struct {
		name   string
		mutate func(*AnswerInput)
	}{
		{"missing user", func(in *AnswerInput) { in.UserID = "" }},
		{"missing question", func(in *AnswerInput) { in.QuestionID = "" }},
		{"missing subtopic", func(in *AnswerInput) { in.SubtopicID = "" }},
		{"negative hints", func(in *AnswerInput) { in.HintsUsed = -1 }},
		{"negative duration", func(in *AnswerInput) { in.TimeToAnswer = &negative }},
		{"unknown depth", func(in *AnswerInput) { in.Depth = "PROFOUND" }},
		{"topic mismatch", func(in *AnswerInput) { in.TopicID = "t2" }},
		{"other user", func(in *AnswerInput) { in.UserID = "u2" }},
		{"locked subtopic", func(in *AnswerInput) { in.SubtopicID = "t1-s1" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := answer("t1-s0", true, store.DepthShallow)
			tt.mutate(&in)
			_, err := f.tracker.RecordAnswer(ctx, in)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}

	got, err := f.store.Answers().ListAnswers(ctx, store.FindAnswers{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, got, "rejected answers are not stored")

	_, err = f.tracker.RecordAnswer(ctx, answer("nope", true, store.DepthShallow))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

type stubClassifier struct {
	depth store.AnswerDepth
	err   error
	calls int
}

func (c *stubClassifier) ClassifyDepth(context.Context, AnswerInput) (store.AnswerDepth, error) {
	c.calls++
	return c.depth, c.err
}

func TestRecordAnswer_Classifier(t *testing.T) {
	ctx := context.Background()

	t.Run("used when depth missing", func(t *testing.T) {
		cls := &stubClassifier{depth: store.DepthDeep}
		f := newFixture(t, cls, 1)
		out, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, ""))
		require.NoError(t, err)
		assert.Equal(t, 1, cls.calls)
		assert.Equal(t, store.DepthDeep, out.Answer.Depth)
	})

	t.Run("explicit depth wins", func(t *testing.T) {
		cls := &stubClassifier{depth: store.DepthDeep}
		f := newFixture(t, cls, 1)
		out, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, store.DepthShallow))
		require.NoError(t, err)
		assert.Zero(t, cls.calls)
		assert.Equal(t, store.DepthShallow, out.Answer.Depth)
	})

	t.Run("failure aborts", func(t *testing.T) {
		cls := &stubClassifier{err: errors.New("model offline")}
		f := newFixture(t, cls, 1)
		_, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, ""))
		require.Error(t, err)

		got, err := f.store.Answers().ListAnswers(ctx, store.FindAnswers{UserID: "u1"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("bad label rejected", func(t *testing.T) {
		f := newFixture(t, &stubClassifier{depth: "VAGUE"}, 1)
		_, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, ""))
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("absent classifier records none", func(t *testing.T) {
		f := newFixture(t, nil, 1)
		out, err := f.tracker.RecordAnswer(ctx, answer("t1-s0", true, ""))
		require.NoError(t, err)
		assert.Equal(t, store.DepthNone, out.Answer.Depth)
	})
}
