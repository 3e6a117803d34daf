// Package storetest opens throwaway SQLite stores and seeds curricula for
// tests in other packages.
package storetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/abhisek/tutorcore/internal/store"
)

var dbCounter atomic.Int64

// Open returns a store backed by a private in-memory database that is
// closed when the test ends.
func Open(t testing.TB) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:tutor_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	s, err := store.Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Curriculum describes a topic to seed. Concepts[i] is the number of
// concepts created for subtopic i.
type Curriculum struct {
	UserID   string
	TopicID  string
	Concepts []int
}

// Seeded holds the ids created by Seed, subtopics in order.
type Seeded struct {
	Topic     store.Topic
	Subtopics []store.Subtopic
	Concepts  map[string][]store.Concept
}

// Seed creates an ACTIVE topic whose first subtopic is unlocked and the
// rest locked. Subtopic ids are "<topic>-s<i>", concept ids
// "<topic>-s<i>-c<j>".
func Seed(t testing.TB, repo store.CurriculumRepo, c Curriculum) Seeded {
	t.Helper()
	ctx := context.Background()

	out := Seeded{
		Topic: store.Topic{
			ID:     c.TopicID,
			UserID: c.UserID,
			Name:   c.TopicID,
			Status: store.TopicActive,
		},
		Concepts: make(map[string][]store.Concept),
	}
	if err := repo.CreateTopic(ctx, &out.Topic); err != nil {
		t.Fatalf("seed topic: %v", err)
	}

	for i, n := range c.Concepts {
		sub := store.Subtopic{
			ID:       fmt.Sprintf("%s-s%d", c.TopicID, i),
			TopicID:  c.TopicID,
			Name:     fmt.Sprintf("subtopic %d", i),
			Order:    i,
			IsLocked: i > 0,
		}
		if err := repo.CreateSubtopic(ctx, &sub); err != nil {
			t.Fatalf("seed subtopic %d: %v", i, err)
		}
		out.Subtopics = append(out.Subtopics, sub)

		for j := 0; j < n; j++ {
			con := store.Concept{
				ID:         fmt.Sprintf("%s-c%d", sub.ID, j),
				SubtopicID: sub.ID,
				Name:       fmt.Sprintf("concept %d.%d", i, j),
				Order:      j,
			}
			if err := repo.CreateConcept(ctx, &con); err != nil {
				t.Fatalf("seed concept %d.%d: %v", i, j, err)
			}
			out.Concepts[sub.ID] = append(out.Concepts[sub.ID], con)
		}
	}
	return out
}
