package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while maintaining a session.
//
// Runtime errors include:
//   - Persist failure: the store rejected a statement or snapshot
//   - Replay divergence: a rebuilt model hashes differently from the
//     snapshot stored with the log
//   - Missing session: the store has no such session
//
// Statement format errors are not RuntimeErrors; they surface as
// ir.FormatError and leave the aggregator unchanged.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Session identifies the affected session, if any.
	Session string

	// Seq is the statement seq involved, if any.
	Seq int64

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodePersistFailed indicates a store write failed.
	ErrCodePersistFailed RuntimeErrorCode = "PERSIST_FAILED"

	// ErrCodeReplayDiverged indicates a replayed model does not match the
	// stored snapshot hash.
	ErrCodeReplayDiverged RuntimeErrorCode = "REPLAY_DIVERGED"

	// ErrCodeSessionNotFound indicates the requested session does not exist.
	ErrCodeSessionNotFound RuntimeErrorCode = "SESSION_NOT_FOUND"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Session != "" && e.Seq > 0 {
		return fmt.Sprintf("%s: %s (session=%s, seq=%d)", e.Code, e.Message, e.Session, e.Seq)
	}
	if e.Session != "" {
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.Session)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsReplayDivergence returns true if the error is a replay divergence.
// Uses errors.As to handle wrapped errors.
func IsReplayDivergence(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReplayDiverged
	}
	return false
}

// IsPersistError returns true if the error is a store write failure.
func IsPersistError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodePersistFailed
	}
	return false
}

// IsSessionNotFound returns true if the error reports a missing session.
func IsSessionNotFound(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSessionNotFound
	}
	return false
}

// NewPersistError wraps a store failure.
func NewPersistError(session string, seq int64, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodePersistFailed,
		Message: fmt.Sprintf("persist statement: %v", err),
		Session: session,
		Seq:     seq,
		Err:     err,
	}
}

// NewReplayDivergedError reports a hash mismatch after replay.
func NewReplayDivergedError(session string, seq int64, stored, rebuilt string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeReplayDiverged,
		Message: "rebuilt model does not match stored snapshot",
		Session: session,
		Seq:     seq,
		Details: map[string]string{
			"stored_hash":  stored,
			"rebuilt_hash": rebuilt,
		},
	}
}

// NewSessionNotFoundError reports a missing session.
func NewSessionNotFoundError(session string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSessionNotFound,
		Message: "no such session",
		Session: session,
		Err:     err,
	}
}
