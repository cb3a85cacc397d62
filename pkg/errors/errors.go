// Package errors defines the closed catalog of API error kinds and the AppError
// carrier used to move them from services to the response envelope.
package errors

import (
	"errors"
	"fmt"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Kind     Kind
	Detail   string
	Internal error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Kind.Name()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}
	return msg
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is reports a match against another AppError of the same kind, so callers can
// write errors.Is(err, errors.ErrNotFound) regardless of attached details.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// HasDetail reports whether a detail string is attached.
func (e *AppError) HasDetail() bool {
	return e != nil && e.Detail != ""
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithDetail returns a copy of the AppError carrying the formatted detail value.
func (e *AppError) WithDetail(detail any) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Detail = fmt.Sprint(detail)
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrInternalServer        = New(Internal)
	ErrInvalidInput          = New(InvalidInput)
	ErrNotFound              = New(NotFound)
	ErrConflict              = New(Conflict)
	ErrAuthorizationRequired = New(AuthorizationRequired)
	ErrInvalidToken          = New(InvalidToken)
	ErrForbidden             = New(Forbidden)
	ErrNoAccess              = New(NoAccess)
	ErrObsolete              = New(Obsolete)
)

// New builds an application error of the given kind.
func New(kind Kind) *AppError {
	return &AppError{Kind: kind}
}

// NewWithDetail builds an application error carrying the formatted detail value.
func NewWithDetail(kind Kind, detail any) *AppError {
	return &AppError{Kind: kind, Detail: fmt.Sprint(detail)}
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(detail string) *AppError {
	return &AppError{Kind: InvalidInput, Detail: detail}
}

// Wrap turns any error into an AppError of the given kind while keeping the
// original error for logging. The cause is never rendered to clients.
func Wrap(kind Kind, err error) *AppError {
	return &AppError{Kind: kind, Internal: err}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}
