// Package apperror defines the typed failures reported by the booking engine.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable failure category.
type Kind string

const (
	KindInvalidRange      Kind = "INVALID_RANGE"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInvalidState      Kind = "INVALID_STATE"
	KindUnexpected        Kind = "UNEXPECTED"
)

// Resource names what could not be found.
type Resource string

const (
	ResourceProperty    Resource = "PROPERTY"
	ResourceTenant      Resource = "TENANT"
	ResourceReservation Resource = "RESERVATION"
)

// Error is a classified engine failure.
type Error struct {
	Kind     Kind
	Resource Resource // set for KindNotFound only
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to the status a transport should answer with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidRange, KindInvalidTransition, KindInvalidState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies a lower-level failure, keeping it reachable through errors.Is.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func InvalidRange(msg string) *Error { return New(KindInvalidRange, msg) }

func Conflict(msg string) *Error { return New(KindConflict, msg) }

func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

func InvalidTransition(msg string) *Error { return New(KindInvalidTransition, msg) }

func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }

// NotFound reports a missing property, tenant or reservation.
func NotFound(r Resource) *Error {
	var msg string
	switch r {
	case ResourceProperty:
		msg = "property not found"
	case ResourceTenant:
		msg = "tenant not found"
	case ResourceReservation:
		msg = "reservation not found"
	default:
		msg = "not found"
	}
	return &Error{Kind: KindNotFound, Resource: r, Message: msg}
}

// Unexpected wraps a store or directory failure that has no domain meaning.
func Unexpected(op string, err error) *Error {
	return Wrap(KindUnexpected, "an error occurred while "+op, err)
}

// KindOf extracts the kind from any error. Unclassified errors are KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsNotFound reports whether err is a not-found failure for resource r.
func IsNotFound(err error, r Resource) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound && e.Resource == r
}
