package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/framing-go/domain/session"
)

// SessionStore is a Redis-backed implementation of session.Store, suited to
// deployments where several instances share dialogue state.
type SessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewSessionStore creates a new Redis session store with the given
// configuration.
func NewSessionStore(cfg Config, opts ...ConfigOption) (*SessionStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &SessionStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.SessionTTL,
	}, nil
}

// NewSessionStoreFromClient creates a session store from an existing Redis
// client.
func NewSessionStoreFromClient(client *redis.Client, keyPrefix string) *SessionStore {
	return &SessionStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// prefixKey adds the key prefix.
func (s *SessionStore) prefixKey(id string) string {
	return s.keyPrefix + "sessions:" + id
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

	return s.client.Set(ctx, s.prefixKey(sess.ID), data, s.ttl).Err()
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, session.ErrInvalidSessionID
	}

	data, err := s.client.Get(ctx, s.prefixKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrSessionNotFound
		}
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

	removed, err := s.client.Del(ctx, s.prefixKey(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// Close closes the Redis connection.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client.
func (s *SessionStore) Client() *redis.Client {
	return s.client
}

var _ session.Store = (*SessionStore)(nil)
