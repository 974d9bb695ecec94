// Package questerr defines the error taxonomy shared by the engine packages.
package questerr

import (
	"errors"
	"fmt"
)

// Kind identifies a specific failure reported back to the caller.
type Kind string

// Validation kinds: bad input, state unchanged, retry allowed.
const (
	MissingInput Kind = "missing input"
	CodeMismatch Kind = "code mismatch"
)

// Precondition kinds: rejected before any mutation.
const (
	UnknownQuest        Kind = "unknown quest"
	Locked              Kind = "locked"
	AlreadyCompleted    Kind = "already completed"
	NotTrackable        Kind = "not trackable"
	InProgress          Kind = "already in progress"
	UnsupportedEvidence Kind = "unsupported evidence"
)

// Persistence kind: the snapshot could not be loaded or saved.
const Persistence Kind = "persistence"

// Error is a classified engine failure.
type Error struct {
	Kind    Kind
	QuestID string
	Message string // user-facing text, may be empty
	Err     error  // underlying cause, may be nil
}

// New creates an error of the given kind for a quest.
func New(kind Kind, questID, message string) *Error {
	return &Error{Kind: kind, QuestID: questID, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, questID string, err error) *Error {
	return &Error{Kind: kind, QuestID: questID, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.QuestID != "" {
		msg = fmt.Sprintf("quest %s: %s", e.QuestID, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Text returns the user-facing message, falling back to the kind.
func (e *Error) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}

// IsValidation reports whether err is a retryable input error.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case MissingInput, CodeMismatch:
		return true
	}
	return false
}

// IsPrecondition reports whether err was rejected before any mutation
// because of the quest's status or an unsupported request.
func IsPrecondition(err error) bool {
	switch KindOf(err) {
	case UnknownQuest, Locked, AlreadyCompleted, NotTrackable, InProgress, UnsupportedEvidence:
		return true
	}
	return false
}

// IsPersistence reports whether err came from the snapshot store. The
// in-memory change that preceded it has already been applied.
func IsPersistence(err error) bool {
	return KindOf(err) == Persistence
}
