package session

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrSessionNotFound indicates an operation referenced an unknown
	// session id. Surfaced to clients as a not-found condition.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionID indicates an empty or malformed session id.
	ErrInvalidSessionID = errors.New("invalid session id")
)

// Store is the durable mapping from session id to session state. A session
// surviving a process restart must be retrievable by id with its phase,
// transcript, and artifact intact.
//
// Implementations may be in-memory, BadgerDB, SQLite, or Redis.
type Store interface {
	// Put persists a session, creating or replacing it.
	Put(ctx context.Context, s *Session) error

	// Get retrieves a session by id.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. The core never calls this; it exists for
	// administrative cleanup.
	Delete(ctx context.Context, id string) error

	// Close releases the store's resources.
	Close() error
}
