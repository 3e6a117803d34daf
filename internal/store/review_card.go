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

var reviewCardColumns = []string{
	"id", "user_id", "topic_id", "subtopic_id", "concept_id", "type",
	"stability", "difficulty", "elapsed_days", "scheduled_days", "reps", "lapses",
	"state", "last_reviewed", "next_review", "last_rating", "status", "version", "created_at",
}

// reviewCardRepo implements ReviewCardRepo on SQLite.
type reviewCardRepo struct {
	db *sql.DB
}

func (r *reviewCardRepo) CreateReviewCard(ctx context.Context, c *ReviewCard) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Version = 1

	query, args := builder().Insert("review_cards").
		Columns(reviewCardColumns...).
		Values(c.ID, c.UserID, c.TopicID, c.SubtopicID, c.ConceptID, string(c.Type),
			c.Stability, c.Difficulty, c.ElapsedDays, c.ScheduledDays, c.Reps, c.Lapses,
			string(c.State), nullMillis(c.LastReviewed), toMillis(c.NextReview), nullInt(c.LastRating),
			string(c.Status), c.Version, toMillis(c.CreatedAt)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "insert review card")
	}
	return nil
}

func (r *reviewCardRepo) GetReviewCard(ctx context.Context, id string) (*ReviewCard, error) {
	b := builder()
	query, args := b.Select(reviewCardColumns...).
		From(b.Table("review_cards")).
		Where(entsql.EQ("id", id)).
		Query()

	c, err := scanReviewCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(apperr.ErrNotFound, "review card %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query review card")
	}
	return c, nil
}

func (r *reviewCardRepo) FindReviewCard(ctx context.Context, scope CardScope) (*ReviewCard, error) {
	b := builder()
	query, args := b.Select(reviewCardColumns...).
		From(b.Table("review_cards")).
		Where(entsql.And(
			entsql.EQ("user_id", scope.UserID),
			entsql.EQ("type", string(scope.Type)),
			entsql.EQ("topic_id", scope.TopicID),
			entsql.EQ("subtopic_id", scope.SubtopicID),
			entsql.EQ("concept_id", scope.ConceptID),
		)).
		Query()

	c, err := scanReviewCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query review card by scope")
	}
	return c, nil
}

func (r *reviewCardRepo) UpdateReviewCard(ctx context.Context, c *ReviewCard) error {
	next := c.Version + 1
	query, args := builder().Update("review_cards").
		Set("stability", c.Stability).
		Set("difficulty", c.Difficulty).
		Set("elapsed_days", c.ElapsedDays).
		Set("scheduled_days", c.ScheduledDays).
		Set("reps", c.Reps).
		Set("lapses", c.Lapses).
		Set("state", string(c.State)).
		Set("last_reviewed", nullMillis(c.LastReviewed)).
		Set("next_review", toMillis(c.NextReview)).
		Set("last_rating", nullInt(c.LastRating)).
		Set("status", string(c.Status)).
		Set("version", next).
		Where(entsql.And(entsql.EQ("id", c.ID), entsql.EQ("version", c.Version))).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "update review card")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update review card")
	}
	if n == 0 {
		if _, err := r.GetReviewCard(ctx, c.ID); err != nil {
			return err
		}
		return errors.Wrapf(apperr.ErrConflict, "review card %s changed since version %d", c.ID, c.Version)
	}
	c.Version = next
	return nil
}

func (r *reviewCardRepo) ListDueReviewCards(ctx context.Context, find FindDueReviews) ([]ReviewCard, error) {
	b := builder()
	sel := b.Select(reviewCardColumns...).
		From(b.Table("review_cards")).
		Where(duePredicate(find)).
		OrderBy("next_review", "id")
	if find.Limit > 0 {
		sel.Limit(find.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query due review cards")
	}
	defer rows.Close()

	var out []ReviewCard
	for rows.Next() {
		c, err := scanReviewCard(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan review card")
		}
		out = append(out, *c)
	}
	return out, errors.Wrap(rows.Err(), "iterate review cards")
}

func (r *reviewCardRepo) CountDueReviewCards(ctx context.Context, find FindDueReviews) (int, error) {
	b := builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table("review_cards")).
		Where(duePredicate(find)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count due review cards")
	}
	return n, nil
}

func duePredicate(find FindDueReviews) *entsql.Predicate {
	preds := []*entsql.Predicate{
		entsql.EQ("user_id", find.UserID),
		entsql.LTE("next_review", toMillis(find.Now)),
		entsql.NEQ("status", string(StatusGraduated)),
	}
	if find.TopicID != "" {
		preds = append(preds, entsql.EQ("topic_id", find.TopicID))
	}
	return entsql.And(preds...)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewCard(row rowScanner) (*ReviewCard, error) {
	var (
		c                        ReviewCard
		cardType, state, status  string
		lastReviewed, lastRating sql.NullInt64
		nextReview, createdAt    int64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.TopicID, &c.SubtopicID, &c.ConceptID, &cardType,
		&c.Stability, &c.Difficulty, &c.ElapsedDays, &c.ScheduledDays, &c.Reps, &c.Lapses,
		&state, &lastReviewed, &nextReview, &lastRating, &status, &c.Version, &createdAt)
	if err != nil {
		return nil, err
	}
	c.Type = CardType(cardType)
	c.State = CardState(state)
	c.Status = CardStatus(status)
	if lastReviewed.Valid {
		t := fromMillis(lastReviewed.Int64)
		c.LastReviewed = &t
	}
	if lastRating.Valid {
		v := int(lastRating.Int64)
		c.LastRating = &v
	}
	c.NextReview = fromMillis(nextReview)
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}

func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
