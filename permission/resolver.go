package permission

import (
	"context"
	"errors"
)

// ErrNoSource is returned when a resolver has no source configured.
var ErrNoSource = errors.New("permission: source is not configured")

// Resolver performs cache-first snapshot lookups.
type Resolver struct {
	cache  *Cache
	source Source
}

// NewResolver wires a cache to a source. cache may be nil, in which case
// every lookup goes to the source.
func NewResolver(cache *Cache, source Source) *Resolver {
	return &Resolver{cache: cache, source: source}
}

// Cache returns the underlying cache (possibly nil).
func (r *Resolver) Cache() *Cache { return r.cache }

// Lookup returns the snapshot for userID. With bypass set the source is read
// directly and the cache is neither consulted nor populated.
func (r *Resolver) Lookup(ctx context.Context, userID string, bypass bool) (Snapshot, error) {
	if r.source == nil {
		return Snapshot{}, ErrNoSource
	}
	if !bypass && r.cache != nil {
		if snap, ok := r.cache.Get(userID); ok {
			return snap, nil
		}
	}

	snap, err := r.source.GetUserRolesAndPermissions(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if bypass || r.cache == nil {
		return snap, nil
	}
	snap.ExpiresAt = r.cache.now().Add(r.cache.ttl)
	return r.cache.Set(userID, snap), nil
}

// Invalidate drops the cached entry for userID, if any.
func (r *Resolver) Invalidate(userID string) {
	if r.cache != nil {
		r.cache.Invalidate(userID)
	}
}
