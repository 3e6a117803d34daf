package store

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// answerColumns starts with the database-assigned sequence.
var answerColumns = []string{
	"sequence", "id", "question_id", "user_id", "session_id", "topic_id",
	"subtopic_id", "concept_id", "is_correct", "depth", "hints_used",
	"time_to_answer_ms", "created_at",
}

// answerRepo implements AnswerRepo on SQLite.
type answerRepo struct {
	db *sql.DB
}

func (r *answerRepo) AppendAnswer(ctx context.Context, a *AnswerRecord) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var timeMs any
	if a.TimeToAnswer != nil {
		timeMs = a.TimeToAnswer.Milliseconds()
	}

	query, args := builder().Insert("answers").
		Columns(answerColumns[1:]...).
		Values(a.ID, a.QuestionID, a.UserID, a.SessionID, a.TopicID,
			a.SubtopicID, a.ConceptID, a.IsCorrect, string(a.Depth), a.HintsUsed,
			timeMs, toMillis(a.CreatedAt)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "insert answer")
	}
	// sequence is the rowid alias, so the last insert id is the new value.
	if a.Sequence, err = res.LastInsertId(); err != nil {
		return errors.Wrap(err, "read answer sequence")
	}
	return nil
}

func (r *answerRepo) ListAnswers(ctx context.Context, find FindAnswers) ([]AnswerRecord, error) {
	b := builder()
	sel := b.Select(answerColumns...).From(b.Table("answers"))

	var preds []*entsql.Predicate
	if find.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", find.UserID))
	}
	if find.TopicID != "" {
		preds = append(preds, entsql.EQ("topic_id", find.TopicID))
	}
	if find.SubtopicID != "" {
		preds = append(preds, entsql.EQ("subtopic_id", find.SubtopicID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if find.NewestFirst {
		sel.OrderBy(entsql.Desc("sequence"))
	} else {
		sel.OrderBy("sequence")
	}
	if find.Limit > 0 {
		sel.Limit(find.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query answers")
	}
	defer rows.Close()

	var out []AnswerRecord
	for rows.Next() {
		var (
			a       AnswerRecord
			depth   string
			timeMs  sql.NullInt64
			created int64
		)
		if err := rows.Scan(&a.Sequence, &a.ID, &a.QuestionID, &a.UserID, &a.SessionID,
			&a.TopicID, &a.SubtopicID, &a.ConceptID, &a.IsCorrect, &depth, &a.HintsUsed,
			&timeMs, &created); err != nil {
			return nil, errors.Wrap(err, "scan answer")
		}
		a.Depth = AnswerDepth(depth)
		if timeMs.Valid {
			d := time.Duration(timeMs.Int64) * time.Millisecond
			a.TimeToAnswer = &d
		}
		a.CreatedAt = fromMillis(created)
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "iterate answers")
}
