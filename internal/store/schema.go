package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// schema is applied on every Open. Statements must stay idempotent.
// Timestamps are stored as unix milliseconds so ordering and range
// predicates compare integers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		mastery_percentage INTEGER NOT NULL DEFAULT 0 CHECK (mastery_percentage BETWEEN 0 AND 100),
		status TEXT NOT NULL DEFAULT 'QUEUED',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_topics_user ON topics(user_id)`,

	`CREATE TABLE IF NOT EXISTS subtopics (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL,
		mastery_percentage INTEGER NOT NULL DEFAULT 0 CHECK (mastery_percentage BETWEEN 0 AND 100),
		is_locked INTEGER NOT NULL DEFAULT 1,
		UNIQUE (topic_id, sort_order)
	)`,

	`CREATE TABLE IF NOT EXISTS concepts (
		id TEXT PRIMARY KEY,
		subtopic_id TEXT NOT NULL REFERENCES subtopics(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_mastered INTEGER NOT NULL DEFAULT 0,
		mastered_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_concepts_subtopic ON concepts(subtopic_id, sort_order)`,

	`CREATE TABLE IF NOT EXISTS answers (
		sequence INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		question_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		topic_id TEXT NOT NULL,
		subtopic_id TEXT NOT NULL,
		concept_id TEXT NOT NULL DEFAULT '',
		is_correct INTEGER NOT NULL,
		depth TEXT NOT NULL,
		hints_used INTEGER NOT NULL DEFAULT 0,
		time_to_answer_ms INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_subtopic ON answers(subtopic_id, sequence)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_topic ON answers(topic_id, sequence)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id, sequence)`,

	`CREATE TABLE IF NOT EXISTS review_cards (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		topic_id TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		subtopic_id TEXT NOT NULL DEFAULT '',
		concept_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		stability REAL NOT NULL DEFAULT 0,
		difficulty REAL NOT NULL DEFAULT 0,
		elapsed_days INTEGER NOT NULL DEFAULT 0,
		scheduled_days INTEGER NOT NULL DEFAULT 0,
		reps INTEGER NOT NULL DEFAULT 0,
		lapses INTEGER NOT NULL DEFAULT 0,
		state TEXT NOT NULL DEFAULT 'NEW',
		last_reviewed INTEGER,
		next_review INTEGER NOT NULL,
		last_rating INTEGER,
		status TEXT NOT NULL DEFAULT 'NEW',
		version INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		UNIQUE (user_id, type, topic_id, subtopic_id, concept_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_review_cards_due ON review_cards(user_id, next_review)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}
