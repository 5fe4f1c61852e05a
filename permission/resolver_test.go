package permission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type syncClock struct {
	mu sync.Mutex
	t  time.Time
}

func (s *syncClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

func (s *syncClock) Advance(d time.Duration) {
	s.mu.Lock()
	s.t = s.t.Add(d)
	s.mu.Unlock()
}

type countingSource struct {
	inner Source
	calls int
	err   error
}

func (c *countingSource) GetUserRolesAndPermissions(ctx context.Context, userID string) (Snapshot, error) {
	c.calls++
	if c.err != nil {
		return Snapshot{}, c.err
	}
	return c.inner.GetUserRolesAndPermissions(ctx, userID)
}

func TestResolverCacheFirst(t *testing.T) {
	static := NewStaticSource()
	static.Assign("u1", []Role{{ID: "r1", Name: "editor"}}, []Permission{{Code: "doc.write"}})
	src := &countingSource{inner: static}
	cache := NewCache(CacheConfig{})
	defer cache.Close()
	r := NewResolver(cache, src)

	for i := 0; i < 3; i++ {
		snap, err := r.Lookup(context.Background(), "u1", false)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got := snap.RoleNames(); len(got) != 1 || got[0] != "editor" {
			t.Fatalf("unexpected roles %v", got)
		}
		if got := snap.PermissionCodes(); len(got) != 1 || got[0] != "doc.write" {
			t.Fatalf("unexpected permissions %v", got)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls)
	}

	r.Invalidate("u1")
	if _, err := r.Lookup(context.Background(), "u1", false); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected source call after invalidate, got %d", src.calls)
	}
}

func TestResolverBypassNeverPopulates(t *testing.T) {
	src := &countingSource{inner: NewStaticSource()}
	cache := NewCache(CacheConfig{})
	defer cache.Close()
	r := NewResolver(cache, src)

	for i := 0; i < 2; i++ {
		if _, err := r.Lookup(context.Background(), "u1", true); err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
	}
	if src.calls != 2 {
		t.Fatalf("bypass must always hit the source, got %d calls", src.calls)
	}
	if cache.Len() != 0 {
		t.Fatalf("bypass must not populate the cache, len=%d", cache.Len())
	}
}

func TestResolverPropagatesSourceError(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(NewCache(CacheConfig{}), &countingSource{err: boom})
	if _, err := r.Lookup(context.Background(), "u1", false); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
	if r.Cache().Len() != 0 {
		t.Fatal("failed lookups must not be cached")
	}

	if _, err := NewResolver(nil, nil).Lookup(context.Background(), "u1", false); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}
