// Package memory provides in-memory implementations of storage interfaces.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// sessionEntry holds a deep copy of a session for storage.
type sessionEntry struct {
	data []byte
}

// SessionStore is an in-memory implementation of session.Store.
type SessionStore struct {
	sessions map[string]*sessionEntry
	mu       sync.RWMutex
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
	}
}

// Put persists a session, creating or replacing it.
func (s *SessionStore) Put(ctx context.Context, sess *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if sess.ID == "" {
		return session.ErrInvalidSessionID
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = &sessionEntry{data: data}
	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, session.ErrInvalidSessionID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}

	var sess session.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, err
	}

	return &sess, nil
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if id == "" {
		return session.ErrInvalidSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return session.ErrSessionNotFound
	}

	delete(s.sessions, id)
	return nil
}

// Close releases nothing; it exists to satisfy session.Store.
func (s *SessionStore) Close() error {
	return nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Clear removes all sessions from the store.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*sessionEntry)
}

var _ session.Store = (*SessionStore)(nil)
