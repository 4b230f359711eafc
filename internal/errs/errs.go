// Package errs defines the error taxonomy shared by services and the HTTP
// layer. Guard and validation failures carry messages suitable for direct
// display; internal failures are wrapped so storage details never leak to
// the caller.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindNotFound
)

// Error is a classified error with a user-facing message.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthenticated indicates a missing or invalid session.
func Unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Msg: "not authenticated"}
}

// Forbidden indicates a capability or seniority check failed.
func Forbidden(reason string) error {
	return &Error{Kind: KindForbidden, Msg: reason}
}

// Validation indicates malformed or empty input.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound indicates a referenced entity is absent or outside tenant scope.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Internal wraps a storage or transport failure. The message shown to
// callers is generic; the cause is preserved for logging.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// KindOf returns the kind of err, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err. Internal errors always
// map to a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "internal error"
}
