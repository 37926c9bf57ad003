package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// SessionStore is a SQLite-backed implementation of session.Store.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SQLite session store with the given
// configuration.
func NewSessionStore(cfg Config, opts ...Option) (*SessionStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &SessionStore{db: db}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewSessionStoreFromDB creates a session store from an existing database
// connection.
func NewSessionStoreFromDB(db *sql.DB) (*SessionStore, error) {
	s := &SessionStore{db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// migrate creates the sessions table if it doesn't exist.
func (s *SessionStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			phase TEXT NOT NULL,
			owner TEXT,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_phase ON sessions(phase);
		CREATE INDEX IF NOT EXISTS idx_sessions_owner ON sessions(owner);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
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

	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, phase, owner, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			phase = excluded.phase, owner = excluded.owner,
			data = excluded.data, updated_at = excluded.updated_at`,
		sess.ID, string(sess.Phase), sess.Owner, data, sess.CreatedAt.Unix(), now,
	)
	return err
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
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM sessions WHERE id = ?",
		id,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
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

	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *SessionStore) DB() *sql.DB {
	return s.db
}

var _ session.Store = (*SessionStore)(nil)
