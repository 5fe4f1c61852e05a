package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session hashes.
const DefaultKeyPrefix = "rs:"

// mutateScript updates fields only when the key still exists. HSET leaves
// the key's TTL untouched.
const mutateScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`

var mutateLua = redis.NewScript(mutateScript)

// RedisStore keeps each record as a hash with a key TTL.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore]. An empty prefix selects
// DefaultKeyPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(rsid string) string {
	return s.prefix + rsid
}

// Put writes rec as a fresh hash with the given TTL.
//
//	Performance: 1 MULTI/EXEC round trip (DEL + HSET + PEXPIRE).
func (s *RedisStore) Put(ctx context.Context, rec *Record, ttl time.Duration) error {
	if rec == nil || rec.RSID == "" {
		return errors.New("session: record requires rsid")
	}
	if ttl <= 0 {
		return errors.New("session: ttl must be positive")
	}

	key := s.key(rec.RSID)
	fields := toArgs(encodeRecord(rec))

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields...)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get loads the hash and its remaining TTL.
//
//	Performance: 1 pipelined round trip (HGETALL + PTTL).
func (s *RedisStore) Get(ctx context.Context, rsid string) (*Record, error) {
	key := s.key(rsid)

	var (
		fieldsCmd *redis.MapStringStringCmd
		ttlCmd    *redis.DurationCmd
	)
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fieldsCmd = pipe.HGetAll(ctx, key)
		ttlCmd = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	fields, err := fieldsCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	ttl, err := ttlCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	// PTTL reports -2 for a missing key and -1 for a key without expiry.
	if len(fields) == 0 || ttl == -2 {
		return nil, ErrNotFound
	}

	rec, err := decodeRecord(rsid, fields)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		rec.TTL = ttl
	}
	return rec, nil
}

// Mutate applies p only when the hash still exists.
//
//	Performance: 1 EVALSHA.
func (s *RedisStore) Mutate(ctx context.Context, rsid string, p Patch) error {
	if p.Empty() {
		return nil
	}
	res, err := mutateLua.Run(ctx, s.redis, []string{s.key(rsid)}, toArgs(p.fields())...).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if res == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the hash.
func (s *RedisStore) Delete(ctx context.Context, rsid string) error {
	if err := s.redis.Del(ctx, s.key(rsid)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func toArgs(m map[string]string) []interface{} {
	out := make([]interface{}, 0, len(m)*2)
	for k, v := range m {
		out = append(out, k, v)
	}
	return out
}
