package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can decide how to react
type Kind int

const (
	// Validation means malformed or out-of-range input; fix and retry.
	Validation Kind = iota + 1
	// NotAuthorized means the caller lacks the required relationship to the entity.
	NotAuthorized
	// InvalidState means the entity does not permit the transition right now.
	InvalidState
	// Persistence means the store failed or a concurrency guard tripped; safe to retry.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotAuthorized:
		return "not_authorized"
	case InvalidState:
		return "invalid_state"
	case Persistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the lifecycle services
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Err      error
	httpCode int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GetHTTPCode returns the HTTP status a handler should answer with
func (e *Error) GetHTTPCode() int {
	if e.httpCode != 0 {
		return e.httpCode
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case NotAuthorized:
		return http.StatusForbidden
	case InvalidState:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func NewValidation(code, message string) *Error {
	return &Error{Kind: Validation, Code: code, Message: message}
}

// NewNotFound reports a reference to an entity that does not exist. It is a
// validation failure answered with 404.
func NewNotFound(code, message string) *Error {
	return &Error{Kind: Validation, Code: code, Message: message, httpCode: http.StatusNotFound}
}

func NewNotAuthorized(code, message string) *Error {
	return &Error{Kind: NotAuthorized, Code: code, Message: message}
}

func NewInvalidState(code, message string) *Error {
	return &Error{Kind: InvalidState, Code: code, Message: message}
}

func NewPersistence(message string, err error) *Error {
	return &Error{Kind: Persistence, Code: "PERSISTENCE_ERROR", Message: message, Err: err}
}

// KindOf returns the kind of err, or Persistence for errors outside the taxonomy
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Persistence
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// From returns err as an *Error, wrapping foreign errors as persistence failures
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewPersistence("unexpected failure", err)
}
