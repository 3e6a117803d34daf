package spacedrep

import (
	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
)

// Rating is a learner's 1-4 recall self-assessment.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// ErrInvalidRating is returned for a rating outside 1-4.
var ErrInvalidRating = errors.Wrap(apperr.ErrValidation, "invalid rating")

// Valid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return "invalid"
}

// ParseRating validates a numeric rating.
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.Valid() {
		return 0, errors.Wrapf(ErrInvalidRating, "got %d", v)
	}
	return r, nil
}
