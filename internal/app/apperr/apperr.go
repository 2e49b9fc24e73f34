package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindInvalidDateRange Kind = "invalid_date_range"
	KindStore            Kind = "store"
	KindUnavailable      Kind = "unavailable"
	KindInternal         Kind = "internal"
)

// Error is an application failure that knows how it surfaces to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }

// Store wraps a backing store failure. The cause is kept for logs, never shown to callers.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: "storage failure", Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status. Date conflicts surface as 400.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindConflict, KindInvalidDateRange:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to return to callers.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "internal error"
	}
	switch appErr.Kind {
	case KindStore:
		return "storage temporarily unavailable"
	case KindInternal:
		return "internal error"
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	if appErr.Err != nil {
		return appErr.Err.Error()
	}
	return string(appErr.Kind)
}
