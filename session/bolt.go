package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("refresh_sessions")

// boltEntry is the on-disk form: the same field map as the Redis hash plus
// an absolute deadline that emulates the key TTL.
type boltEntry struct {
	Fields   map[string]string `json:"fields"`
	Deadline int64             `json:"deadline"`
}

// BoltStore is a single-node [Store] over bbolt. Expired records are
// dropped lazily on access.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*BoltStore)(nil)
)

// NewBoltStore wraps an open database and ensures the bucket exists.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating sessions bucket: %w", err)
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// OpenBoltStore opens (or creates) the database file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewBoltStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// WithClock overrides the clock used for TTL emulation.
func (s *BoltStore) WithClock(now func() time.Time) *BoltStore {
	s.now = now
	return s
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Put(ctx context.Context, rec *Record, ttl time.Duration) error {
	if rec == nil || rec.RSID == "" {
		return errors.New("session: record requires rsid")
	}
	if ttl <= 0 {
		return errors.New("session: ttl must be positive")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	data, err := json.Marshal(boltEntry{
		Fields:   encodeRecord(rec),
		Deadline: s.now().Add(ttl).UnixNano(),
	})
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(rec.RSID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *BoltStore) Get(ctx context.Context, rsid string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var (
		entry   boltEntry
		found   bool
		expired bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(rsid))
		if data == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		expired = s.now().UnixNano() >= entry.Deadline
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	if expired {
		if err := s.dropExpired(rsid); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	rec, err := decodeRecord(rsid, entry.Fields)
	if err != nil {
		return nil, err
	}
	rec.TTL = time.Duration(entry.Deadline - s.now().UnixNano())
	return rec, nil
}

func (s *BoltStore) Mutate(ctx context.Context, rsid string, p Patch) error {
	if p.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		data := b.Get([]byte(rsid))
		if data == nil {
			return ErrNotFound
		}
		var entry boltEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if s.now().UnixNano() >= entry.Deadline {
			if err := b.Delete([]byte(rsid)); err != nil {
				return err
			}
			return ErrNotFound
		}
		if entry.Fields == nil {
			return fmt.Errorf("%w: empty entry", ErrCorrupt)
		}
		for k, v := range p.fields() {
			entry.Fields[k] = v
		}
		out, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(rsid), out)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// dropExpired removes rsid if its deadline has still passed when the write
// transaction runs. A concurrent Put that renewed the key wins.
func (s *BoltStore) dropExpired(rsid string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		data := b.Get([]byte(rsid))
		if data == nil {
			return nil
		}
		var entry boltEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if s.now().UnixNano() < entry.Deadline {
			return nil
		}
		return b.Delete([]byte(rsid))
	})
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *BoltStore) Delete(ctx context.Context, rsid string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(rsid))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping verifies the database is still open.
func (s *BoltStore) Ping(ctx context.Context) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(sessionsBucket) == nil {
			return errors.New("sessions bucket missing")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
