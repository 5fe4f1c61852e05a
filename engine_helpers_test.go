package goRotate

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/goRotate/permission"
	"github.com/MrEthical07/goRotate/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = bytes.Repeat([]byte("s"), 32)
	cfg.JWT.Issuer = "gorotate-test"
	cfg.Envelope.Key = bytes.Repeat([]byte{0x42}, 32)
	cfg.Hash.BcryptCost = 4
	cfg.Permission.SweepInterval = 0
	return cfg
}

type testEnv struct {
	engine *Engine
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	store  *session.RedisStore
	source *permission.StaticSource
}

func newTestEnv(t *testing.T, configure func(*Builder)) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := permission.NewStaticSource()
	source.Assign("u1",
		[]permission.Role{{ID: "r1", Name: "editor"}},
		[]permission.Permission{{Code: "posts.write"}},
	)

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithPermissionSource(source)
	if configure != nil {
		configure(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	t.Cleanup(func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	})

	return &testEnv{
		engine: engine,
		mr:     mr,
		rdb:    rdb,
		store:  session.NewRedisStore(rdb, "rs:"),
		source: source,
	}
}

func (env *testEnv) login(t *testing.T, userID string) *TokenSet {
	t.Helper()
	set, err := env.engine.Login(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return set
}

func (env *testEnv) record(t *testing.T, rsid string) *session.Record {
	t.Helper()
	rec, err := env.store.Get(context.Background(), rsid)
	if err != nil {
		t.Fatalf("get %s: %v", rsid, err)
	}
	return rec
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }
