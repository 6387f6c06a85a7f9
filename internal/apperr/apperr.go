// Package apperr builds errors that carry the HTTP status they should be
// reported with.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a user-facing message tagged with a status code. The wrapped
// cause is kept for logging and errors.Is but never shown to callers.
type Error struct {
	Message string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status of the error.
func (e *Error) StatusCode() int {
	return e.Status
}

// New creates an error with message and status. A zero status means 500.
func New(message string, status int) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{Message: message, Status: status}
}

// Wrap creates an error with message and status that keeps err as its cause.
func Wrap(err error, message string, status int) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{Message: message, Status: status, cause: err}
}

// StatusCode reports the status carried anywhere in err's chain. Errors
// without one map to 500.
func StatusCode(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	return http.StatusInternalServerError
}
