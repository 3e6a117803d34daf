// Package apierr carries an HTTP status and machine-readable code along
// with an error.
package apierr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/apperr"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps err to an API error. Errors that already are *Error pass
// through; core sentinels become 404, 400 or 409; anything else is a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case apperr.IsNotFound(err):
		return New(http.StatusNotFound, "not_found", err)
	case apperr.IsValidation(err):
		return New(http.StatusBadRequest, "invalid_request", err)
	case apperr.IsConflict(err):
		return New(http.StatusConflict, "conflict", err)
	}
	return New(http.StatusInternalServerError, "internal", err)
}
