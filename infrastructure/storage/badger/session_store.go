package badger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// SessionStore is a BadgerDB-backed implementation of session.Store.
type SessionStore struct {
	db        *badger.DB
	keyPrefix string
}

// NewSessionStore creates a new BadgerDB session store with the given
// configuration.
func NewSessionStore(cfg Config, opts ...Option) (*SessionStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	return &SessionStore{
		db:        db,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// NewSessionStoreFromDB creates a session store from an existing BadgerDB
// database.
func NewSessionStoreFromDB(db *badger.DB, keyPrefix string) *SessionStore {
	return &SessionStore{
		db:        db,
		keyPrefix: keyPrefix,
	}
}

// Key format: prefix:sessions:sessionID
func (s *SessionStore) sessionKey(id string) []byte {
	return []byte(s.keyPrefix + "sessions:" + id)
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

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.sessionKey(sess.ID), data)
	})
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, session.ErrInvalidSessionID
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.sessionKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
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

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(s.sessionKey(id)); err != nil {
			return err
		}
		return txn.Delete(s.sessionKey(id))
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return session.ErrSessionNotFound
	}
	return err
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying BadgerDB database.
func (s *SessionStore) DB() *badger.DB {
	return s.db
}

var _ session.Store = (*SessionStore)(nil)
