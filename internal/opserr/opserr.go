// Package opserr defines the typed error taxonomy shared by the lifecycle
// controllers and mapped onto HTTP statuses by the API layer.
package opserr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindNotFound marks a missing train, route, locomotive, session, order
	// or car.
	KindNotFound Kind = iota
	// KindInvalidTransition marks an operation attempted against an entity
	// in an incompatible status.
	KindInvalidTransition
	// KindConflict marks a duplicate assignment, an edit of a non-Planned
	// train, or a lost compare-and-swap race.
	KindConflict
	// KindValidation marks malformed input.
	KindValidation
	// KindInternal marks an unexpected persistence failure or a corrupted
	// snapshot.
	KindInternal
)

// Error is a domain failure with a human-readable message. Internal errors
// additionally wrap the underlying cause, which is never surfaced to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound builds a missing-entity error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds an incompatible-status error.
func InvalidTransition(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflicting-write error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Validation builds a malformed-input error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. msg is the caller-facing message;
// err is the underlying cause kept for logs only.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// IsKind reports whether err is an opserr.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps an error to the HTTP status the API should answer with.
// Non-domain errors map to 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message for an error. Internal causes and
// non-domain errors are masked.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	return e.Msg
}
