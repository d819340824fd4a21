// Package store owns the persistence and coordination logic for users,
// conversations, messages and call sessions. Each operation is a short
// read-modify-write against a single row; nothing here holds a lock across
// operations.
package store

import "errors"

// Errors surfaced to handlers. Handlers translate these into HTTP status
// codes; nothing in this package retries.
var (
	// ErrNotFound means a referenced conversation, user or call is absent.
	ErrNotFound = errors.New("not found")

	// ErrNotGroup means a group-only operation was attempted on a direct chat.
	ErrNotGroup = errors.New("conversation is not a group")

	// ErrNotParticipant means the acting user is not in the participant sequence.
	ErrNotParticipant = errors.New("not a participant of this conversation")
)
