package spacedrep

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/store"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestCreateCard(t *testing.T) {
	c := NewScheduler(0.9).CreateCard(t0)
	assert.Equal(t, store.StateNew, c.State)
	assert.Equal(t, store.StatusNew, c.Status)
	assert.Zero(t, c.Stability)
	assert.Zero(t, c.Difficulty)
	assert.Zero(t, c.Reps)
	assert.Zero(t, c.Lapses)
	assert.Nil(t, c.LastReviewed)
	assert.True(t, c.NextReview.Equal(t0))
}

func TestScheduleNextReview_FreshCardIntervals(t *testing.T) {
	s := NewScheduler(0.9)
	fresh := s.CreateCard(t0)

	due := make(map[Rating]time.Duration)
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		next, err := s.ScheduleNextReview(fresh, r, t0)
		require.NoError(t, err)
		due[r] = next.NextReview.Sub(t0)
	}

	assert.Less(t, due[Again], 24*time.Hour, "again stays within the day")
	assert.Greater(t, due[Easy], 24*time.Hour, "easy lands beyond a day")
	assert.LessOrEqual(t, due[Again], due[Hard])
	assert.LessOrEqual(t, due[Hard], due[Good])
	assert.Less(t, due[Good], due[Easy])
}

func TestScheduleNextReview_Bookkeeping(t *testing.T) {
	s := NewScheduler(0.9)
	card := s.CreateCard(t0)

	now := t0
	for i, r := range []Rating{Good, Good, Hard, Easy} {
		next, err := s.ScheduleNextReview(card, r, now)
		require.NoError(t, err)

		assert.Equal(t, card.Reps+1, next.Reps, "step %d", i)
		require.NotNil(t, next.LastRating)
		assert.Equal(t, int(r), *next.LastRating)
		require.NotNil(t, next.LastReviewed)
		assert.True(t, next.LastReviewed.Equal(now))
		assert.Equal(t, StateToStatus(next.State), next.Status)
		assert.GreaterOrEqual(t, next.Stability, 0.0)
		assert.GreaterOrEqual(t, next.Difficulty, 0.0)

		card = next
		now = next.NextReview
	}
}

func TestScheduleNextReview_LapseFromReview(t *testing.T) {
	s := NewScheduler(0.9)

	graduated, err := s.ScheduleNextReview(s.CreateCard(t0), Easy, t0)
	require.NoError(t, err)
	require.Equal(t, store.StateReview, graduated.State)
	assert.Equal(t, store.StatusGraduated, graduated.Status)
	assert.Zero(t, graduated.Lapses)

	lapsed, err := s.ScheduleNextReview(graduated, Again, graduated.NextReview)
	require.NoError(t, err)
	assert.Equal(t, store.StateRelearning, lapsed.State)
	assert.Equal(t, store.StatusLapsed, lapsed.Status)
	assert.Equal(t, 1, lapsed.Lapses)
	assert.Less(t, lapsed.Stability, graduated.Stability)
	assert.Less(t, lapsed.NextReview.Sub(graduated.NextReview), 24*time.Hour)
}

func TestScheduleNextReview_AgainOnNewIsNotALapse(t *testing.T) {
	s := NewScheduler(0.9)
	next, err := s.ScheduleNextReview(s.CreateCard(t0), Again, t0)
	require.NoError(t, err)
	assert.Zero(t, next.Lapses)
}

func TestScheduleNextReview_Pure(t *testing.T) {
	s := NewScheduler(0.9)
	card, err := s.ScheduleNextReview(s.CreateCard(t0), Good, t0)
	require.NoError(t, err)
	before := card
	rating := *card.LastRating

	now := t0.Add(3 * 24 * time.Hour)
	a, err := s.ScheduleNextReview(card, Hard, now)
	require.NoError(t, err)
	b, err := s.ScheduleNextReview(card, Hard, now)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, before, card)
	assert.Equal(t, rating, *card.LastRating)
}

func TestScheduleNextReview_InvalidRating(t *testing.T) {
	s := NewScheduler(0.9)
	card := s.CreateCard(t0)
	for _, r := range []Rating{0, 5, -1} {
		got, err := s.ScheduleNextReview(card, r, t0)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "rating %d", r)
		assert.Equal(t, card, got)
	}
}

func TestStateToStatus(t *testing.T) {
	tests := map[store.CardState]store.CardStatus{
		store.StateNew:        store.StatusNew,
		store.StateLearning:   store.StatusLearning,
		store.StateReview:     store.StatusGraduated,
		store.StateRelearning: store.StatusLapsed,
	}
	for state, want := range tests {
		assert.Equal(t, want, StateToStatus(state), "state %s", state)
	}
}

func TestParseRating(t *testing.T) {
	for v := 1; v <= 4; v++ {
		r, err := ParseRating(v)
		require.NoError(t, err)
		assert.Equal(t, Rating(v), r)
	}
	_, err := ParseRating(0)
	assert.True(t, errors.Is(err, ErrInvalidRating))
	assert.Equal(t, "easy", Easy.String())
}

func TestNewScheduler_RetentionFallback(t *testing.T) {
	assert.InDelta(t, DefaultDesiredRetention, NewScheduler(0).DesiredRetention(), 1e-9)
	assert.InDelta(t, DefaultDesiredRetention, NewScheduler(1.2).DesiredRetention(), 1e-9)
	assert.InDelta(t, 0.85, NewScheduler(0.85).DesiredRetention(), 1e-9)
}
