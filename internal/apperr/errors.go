// Package apperr defines the error kinds surfaced by the clinic services.
// Handlers translate a Kind into an HTTP status; everything that is not an
// *Error is reported as Internal.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthorized        Kind = "Unauthorized"
	KindNotFound            Kind = "NotFound"
	KindValidation          Kind = "ValidationError"
	KindInvalidTransition   Kind = "InvalidTransition"
	KindFutureAppointment   Kind = "FutureAppointmentError"
	KindConflict            Kind = "Conflict"
	KindGenerationExhausted Kind = "GenerationExhausted"
	KindInternal            Kind = "Internal"
)

// Error carries a machine readable kind and a message that is safe to show
// to API clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error      { return New(KindUnauthorized, "%s", msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, "%s", msg) }
func Validation(msg string) *Error        { return New(KindValidation, "%s", msg) }
func InvalidTransition(msg string) *Error { return New(KindInvalidTransition, "%s", msg) }
func FutureAppointment(msg string) *Error { return New(KindFutureAppointment, "%s", msg) }
func Conflict(msg string) *Error          { return New(KindConflict, "%s", msg) }

// Internal wraps a collaborator failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
