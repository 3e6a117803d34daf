// Package apperr defines the error kinds shared by the progress engine.
//
// Callers classify failures with errors.Is against the sentinels below.
// Packages wrap them with context, e.g.
//
//	errors.Wrapf(apperr.ErrNotFound, "subtopic %s", id)
package apperr

import "github.com/pkg/errors"

var (
	// ErrNotFound reports an operation on a topic, subtopic, concept or
	// review card that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports input rejected before any state was mutated.
	ErrValidation = errors.New("validation failed")

	// ErrConflict reports a lost update. The caller may retry.
	ErrConflict = errors.New("concurrent modification")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is, or wraps, ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err is, or wraps, ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
