// Package apperr defines the client-facing error kinds shared by repositories, services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP layer.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindPermission    Kind = "PermissionError"
	KindNotFound      Kind = "NotFoundError"
	KindConflict      Kind = "Conflict"
	KindDuplicateRSVP Kind = "DuplicateRSVP"
	KindEventFull     Kind = "EventFull"
)

// Error is a classified, client-correctable error. Message is surfaced to the caller verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrEventFull) works after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrDuplicateRSVP is returned when the user already holds an RSVP for the event.
	ErrDuplicateRSVP = &Error{Kind: KindDuplicateRSVP, Message: "an RSVP already exists for this event"}
	// ErrEventFull is returned when the event is at capacity and has no waitlist.
	ErrEventFull = &Error{Kind: KindEventFull, Message: "event is full"}
)

// Validation returns a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Permission returns a PermissionError.
func Permission(format string, args ...any) error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NotFoundError for the named resource.
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict returns a Conflict error (unique constraint on a non-RSVP resource).
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
