package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so the HTTP surface can pick a status
// code without inspecting entity-specific details.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = iota + 1
	// KindUnauthenticated means no identity was resolved where one is required.
	KindUnauthenticated
	// KindUnauthorized means the caller is not permitted to perform the
	// operation: not the owner, or a confirmation/password mismatch.
	KindUnauthorized
	// KindValidation means the input is malformed or violates an invariant
	// the caller can correct.
	KindValidation
	// KindConflict means a uniqueness constraint was violated.
	KindConflict
	// KindUpstream means the entity store or media store failed.
	KindUpstream
)

// Error is the typed failure returned by every engine operation.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error

	// cleanup marks an upstream failure from a post-commit cleanup step.
	cleanup bool
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

// KindOf extracts the Kind from err, or 0 when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CleanupFailed reports whether err is an upstream failure from a post-commit
// cleanup step. The record mutation itself committed; callers that cache the
// mutated state must still invalidate it.
func CleanupFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.cleanup
}

// Message returns the caller-facing message of an engine error, or a generic
// fallback for unexpected errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Msg: "authentication required"}
}

func unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func invalid(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Msg: op + " failed", Err: err}
}
