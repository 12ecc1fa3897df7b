// Package errors defines the service error taxonomy and its mapping to
// HTTP status codes. Services return these; transport handlers call Map.
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalid
	KindConflict
	KindUnauthenticated
)

// Error is a service-level error with a classification the HTTP layer can
// translate without inspecting message text.
type Error struct {
	Kind    Kind
	Message string
	wrapped error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.wrapped }

func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func Invalid(msg string) error         { return &Error{Kind: KindInvalid, Message: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }

// Wrap attaches a classification to an underlying error.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, wrapped: err}
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// Map converts service/infra errors into an HTTP status + message pair.
// Keeps handlers clean by centralizing the translation.
func Map(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var se *Error
	if errors.As(err, &se) {
		switch se.Kind {
		case KindNotFound:
			return http.StatusNotFound, se.Message
		case KindForbidden:
			return http.StatusForbidden, se.Message
		case KindInvalid:
			return http.StatusBadRequest, se.Message
		case KindConflict:
			return http.StatusConflict, se.Message
		case KindUnauthenticated:
			return http.StatusUnauthorized, se.Message
		}
		return http.StatusInternalServerError, se.Message
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "record already exists"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request was canceled"

	default:
		// fallback → bubble up error message for debugging
		return http.StatusInternalServerError, err.Error()
	}
}
