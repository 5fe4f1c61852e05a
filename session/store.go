package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no live record exists for an rsid.
	ErrNotFound = errors.New("session not found")
	// ErrStoreUnavailable wraps transport failures of the backing store.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrCorrupt is returned when a stored record cannot be decoded.
	ErrCorrupt = errors.New("session record corrupt")
)

// Store persists refresh-session records. Implementations are last-writer-
// wins per key and never serialize concurrent writers.
type Store interface {
	// Put writes rec with the given TTL, replacing any previous record.
	Put(ctx context.Context, rec *Record, ttl time.Duration) error
	// Get returns the record together with its remaining TTL in one round trip.
	Get(ctx context.Context, rsid string) (*Record, error)
	// Mutate applies p to an existing record without touching its TTL.
	// It returns ErrNotFound when the record is gone.
	Mutate(ctx context.Context, rsid string, p Patch) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, rsid string) error
	// Ping checks backend reachability.
	Ping(ctx context.Context) error
}
