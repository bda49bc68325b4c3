package scopetimer

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeMismatch is returned by End when no scope is open or when the
	// innermost open scope has another name.
	ErrScopeMismatch = errors.New("scope mismatch")

	// ErrNotPreprocessed is returned when a summary is rendered before the
	// stats pass ran over the current data.
	ErrNotPreprocessed = errors.New("timing tree not preprocessed")
)

const (
	CodeScopeMismatch   = "SCOPE_MISMATCH"
	CodeNotPreprocessed = "NOT_PREPROCESSED"
)

// Error is the error type returned by scopetimer operations.
// It unwraps to one of the package sentinels so callers can use errors.Is.
type Error struct {
	// Code is a stable identifier for programmatic handling.
	Code string
	// Scope is the scope name the failing call was made with.
	Scope string
	// Active is the name of the innermost open scope, empty when idle.
	Active string

	message string
	kind    error
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func newMismatchError(name, active string) *Error {
	return &Error{
		Code:   CodeScopeMismatch,
		Scope:  name,
		Active: active,
		message: fmt.Sprintf(
			"%s: expected end(%q), but got end(%q); begin/end calls must be paired and nested",
			ErrScopeMismatch, active, name),
		kind: ErrScopeMismatch,
	}
}

func newIdleEndError(name string) *Error {
	return &Error{
		Code:    CodeScopeMismatch,
		Scope:   name,
		message: fmt.Sprintf("%s: end(%q) called without a matching begin()", ErrScopeMismatch, name),
		kind:    ErrScopeMismatch,
	}
}

func newNotPreprocessedError(scope string) *Error {
	return &Error{
		Code:    CodeNotPreprocessed,
		Scope:   scope,
		message: fmt.Sprintf("%s: run the stats pass before rendering %q", ErrNotPreprocessed, scope),
		kind:    ErrNotPreprocessed,
	}
}
