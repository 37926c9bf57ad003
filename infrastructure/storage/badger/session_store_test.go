package badger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/framing-go/domain/session"
	"github.com/felixgeelhaar/framing-go/infrastructure/storage/badger"
)

func newTestSessionStore(t *testing.T) *badger.SessionStore {
	t.Helper()

	store, err := badger.NewSessionStore(badger.Config{InMemory: true, KeyPrefix: "framing:"})
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSessionStore(t *testing.T) {
	store := newTestSessionStore(t)
	if store == nil {
		t.Fatal("expected store, got nil")
	}
	if store.DB() == nil {
		t.Fatal("expected underlying database, got nil")
	}
}

func TestSessionStore_PutAndGet(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	sess := session.New("sess-1", "alex")
	sess.AppendAssistant("hello")
	sess.AppendUser("an idea about night markets")
	sess.Advance()

	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Phase != session.PhaseTensionDiscovery {
		t.Errorf("Phase = %s, want tension_discovery", got.Phase)
	}
	if len(got.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2", len(got.Messages))
	}
	if got.RawInput() != "an idea about night markets" {
		t.Errorf("RawInput() = %q", got.RawInput())
	}
}

func TestSessionStore_PutReplaces(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	sess := session.New("sess-1", "alex")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	sess.AppendUser("a second turn")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Messages) != 1 {
		t.Errorf("len(Messages) = %d, want 1", len(got.Messages))
	}
}

func TestSessionStore_GetNotFound(t *testing.T) {
	store := newTestSessionStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionStore_InvalidID(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, ""); !errors.Is(err, session.ErrInvalidSessionID) {
		t.Errorf("Get err = %v, want ErrInvalidSessionID", err)
	}
	if err := store.Put(ctx, &session.Session{}); !errors.Is(err, session.ErrInvalidSessionID) {
		t.Errorf("Put err = %v, want ErrInvalidSessionID", err)
	}
	if err := store.Delete(ctx, ""); !errors.Is(err, session.ErrInvalidSessionID) {
		t.Errorf("Delete err = %v, want ErrInvalidSessionID", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	sess := session.New("sess-1", "alex")
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Get after delete err = %v, want ErrSessionNotFound", err)
	}

	if err := store.Delete(ctx, "sess-1"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Delete of missing session err = %v, want ErrSessionNotFound", err)
	}
}
