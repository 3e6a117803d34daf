package store

import (
	"context"
	"database/sql"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
)

// curriculumRepo implements CurriculumRepo on SQLite.
type curriculumRepo struct {
	db *sql.DB
}

func (r *curriculumRepo) CreateTopic(ctx context.Context, t *Topic) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TopicQueued
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	query, args := builder().Insert("topics").
		Columns("id", "user_id", "name", "mastery_percentage", "status", "created_at").
		Values(t.ID, t.UserID, t.Name, t.MasteryPercentage, string(t.Status), toMillis(t.CreatedAt)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "insert topic")
	}
	return nil
}

func (r *curriculumRepo) GetTopic(ctx context.Context, id string) (*Topic, error) {
	b := builder()
	query, args := b.Select("id", "user_id", "name", "mastery_percentage", "status", "created_at").
		From(b.Table("topics")).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		t       Topic
		status  string
		created int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.UserID, &t.Name, &t.MasteryPercentage, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "topic %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query topic")
	}
	t.Status = TopicStatus(status)
	t.CreatedAt = fromMillis(created)
	return &t, nil
}

func (r *curriculumRepo) UpdateTopicMastery(ctx context.Context, id string, pct int) error {
	return r.update(ctx, "topics", id, "mastery_percentage", pct)
}

func (r *curriculumRepo) UpdateTopicStatus(ctx context.Context, id string, status TopicStatus) error {
	return r.update(ctx, "topics", id, "status", string(status))
}

func (r *curriculumRepo) CreateSubtopic(ctx context.Context, s *Subtopic) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query, args := builder().Insert("subtopics").
		Columns("id", "topic_id", "name", "sort_order", "mastery_percentage", "is_locked").
		Values(s.ID, s.TopicID, s.Name, s.Order, s.MasteryPercentage, s.IsLocked).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "insert subtopic")
	}
	return nil
}

var subtopicColumns = []string{"id", "topic_id", "name", "sort_order", "mastery_percentage", "is_locked"}

func (r *curriculumRepo) GetSubtopic(ctx context.Context, id string) (*Subtopic, error) {
	b := builder()
	query, args := b.Select(subtopicColumns...).
		From(b.Table("subtopics")).
		Where(entsql.EQ("id", id)).
		Query()

	var s Subtopic
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.ID, &s.TopicID, &s.Name, &s.Order, &s.MasteryPercentage, &s.IsLocked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "subtopic %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query subtopic")
	}
	return &s, nil
}

func (r *curriculumRepo) ListSubtopics(ctx context.Context, topicID string) ([]Subtopic, error) {
	b := builder()
	query, args := b.Select(subtopicColumns...).
		From(b.Table("subtopics")).
		Where(entsql.EQ("topic_id", topicID)).
		OrderBy("sort_order").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query subtopics")
	}
	defer rows.Close()

	var out []Subtopic
	for rows.Next() {
		var s Subtopic
		if err := rows.Scan(&s.ID, &s.TopicID, &s.Name, &s.Order, &s.MasteryPercentage, &s.IsLocked); err != nil {
			return nil, errors.Wrap(err, "scan subtopic")
		}
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "iterate subtopics")
}

func (r *curriculumRepo) UpdateSubtopicMastery(ctx context.Context, id string, pct int) error {
	return r.update(ctx, "subtopics", id, "mastery_percentage", pct)
}

func (r *curriculumRepo) UnlockSubtopic(ctx context.Context, id string) (bool, error) {
	query, args := builder().Update("subtopics").
		Set("is_locked", false).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("is_locked", true))).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, "unlock subtopic")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "unlock subtopic")
	}
	if n == 1 {
		return true, nil
	}
	// Either already unlocked or missing; only the latter is an error.
	if _, err := r.GetSubtopic(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *curriculumRepo) CreateConcept(ctx context.Context, c *Concept) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	var masteredAt any
	if c.MasteredAt != nil {
		masteredAt = toMillis(*c.MasteredAt)
	}
	query, args := builder().Insert("concepts").
		Columns("id", "subtopic_id", "name", "sort_order", "is_mastered", "mastered_at").
		Values(c.ID, c.SubtopicID, c.Name, c.Order, c.IsMastered, masteredAt).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "insert concept")
	}
	return nil
}

func (r *curriculumRepo) ListConcepts(ctx context.Context, subtopicID string) ([]Concept, error) {
	b := builder()
	query, args := b.Select("id", "subtopic_id", "name", "sort_order", "is_mastered", "mastered_at").
		From(b.Table("concepts")).
		Where(entsql.EQ("subtopic_id", subtopicID)).
		OrderBy("sort_order", "id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query concepts")
	}
	defer rows.Close()

	var out []Concept
	for rows.Next() {
		var (
			c          Concept
			masteredAt sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.SubtopicID, &c.Name, &c.Order, &c.IsMastered, &masteredAt); err != nil {
			return nil, errors.Wrap(err, "scan concept")
		}
		if masteredAt.Valid {
			t := fromMillis(masteredAt.Int64)
			c.MasteredAt = &t
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "iterate concepts")
}

// update sets a single column on the row with the given id.
func (r *curriculumRepo) update(ctx context.Context, table, id, column string, value any) error {
	query, args := builder().Update(table).
		Set(column, value).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "update %s.%s", table, column)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "update %s.%s", table, column)
	}
	if n == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "%s %s", table, id)
	}
	return nil
}
