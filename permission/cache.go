package permission

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the number of cached users.
	DefaultCapacity = 500
	// DefaultTTL is the lifetime of a cached snapshot.
	DefaultTTL = 5 * time.Minute
)

// CacheConfig configures a [Cache]. Zero fields take defaults.
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
	// SweepInterval starts a janitor that drops expired entries when > 0.
	SweepInterval time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Cache maps userID to a [Snapshot] with soonest-to-expire eviction.
// All methods are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]Snapshot
	capacity int
	ttl      time.Duration
	now      func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCache constructs a cache and, when configured, starts its janitor.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &Cache{
		entries:  make(map[string]Snapshot, cfg.Capacity),
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		now:      cfg.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if cfg.SweepInterval > 0 {
		go c.janitor(cfg.SweepInterval)
	} else {
		close(c.done)
	}
	return c
}

// Get returns the cached snapshot when it has not yet expired.
func (c *Cache) Get(userID string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok := c.entries[userID]
	if !ok || !c.now().Before(snap.ExpiresAt) {
		return Snapshot{}, false
	}
	return snap, true
}

// Set stores snap for userID. A zero ExpiresAt is replaced by now+TTL.
// When the cache is full and userID is new, the entry with the smallest
// ExpiresAt is evicted first.
func (c *Cache) Set(userID string, snap Snapshot) Snapshot {
	if snap.ExpiresAt.IsZero() {
		snap.ExpiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[userID]; !exists && len(c.entries) >= c.capacity {
		c.evictSoonestLocked()
	}
	c.entries[userID] = snap
	return snap
}

func (c *Cache) evictSoonestLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for id, snap := range c.entries {
		if !found || snap.ExpiresAt.Before(soonest) {
			victim, soonest, found = id, snap.ExpiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

// Invalidate drops the entry for userID.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]Snapshot, c.capacity)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the janitor. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

func (c *Cache) janitor(every time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := c.now()
	c.mu.Lock()
	for id, snap := range c.entries {
		if !now.Before(snap.ExpiresAt) {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()
}
