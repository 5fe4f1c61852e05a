package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func newBoltStoreTest(t *testing.T) (*BoltStore, *stepClock) {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open bolt store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	clock := &stepClock{t: time.Unix(1767225600, 0)}
	store.WithClock(clock.Now)
	return store, clock
}

func TestBoltStoreRoundTripAndLazyExpiry(t *testing.T) {
	store, clock := newBoltStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, testRecord("sid-1"), time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u-1" || got.TTL != time.Hour {
		t.Fatalf("unexpected record %+v", got)
	}

	clock.t = clock.t.Add(time.Hour)
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after deadline, got %v", err)
	}
	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(sessionsBucket).Get([]byte("sid-1")) != nil {
			return errors.New("expired entry still on disk")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestBoltStoreCancelledContextIsUnavailable(t *testing.T) {
	store, _ := newBoltStoreTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, testRecord("sid-1"), time.Hour); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("put: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("get: expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Mutate(ctx, "sid-1", Patch{RevokedAt: time.Now()}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("mutate: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestBoltStoreMutateKeepsDeadline(t *testing.T) {
	store, clock := newBoltStoreTest(t)
	ctx := context.Background()

	if err := store.Put(ctx, testRecord("sid-1"), time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	clock.t = clock.t.Add(20 * time.Minute)
	if err := store.Mutate(ctx, "sid-1", Patch{RevokedAt: clock.t}); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsRevoked || got.IsLoggedOut {
		t.Fatalf("unexpected flags %+v", got)
	}
	if got.TTL != 40*time.Minute {
		t.Fatalf("mutate must not extend ttl, got %v", got.TTL)
	}

	if err := store.Mutate(ctx, "ghost", Patch{RevokedAt: clock.t}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
