package goRotate

import (
	"context"
	"testing"

	"github.com/MrEthical07/goRotate/permission"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newBenchmarkEngine(b *testing.B) (*Engine, func()) {
	b.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := permission.NewStaticSource()
	source.Assign("alice", []permission.Role{{ID: "r1", Name: "member"}}, []permission.Permission{{Code: "posts.read"}})

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithPermissionSource(source).
		Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}

	return engine, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func BenchmarkLogin(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Login(context.Background(), "alice", ""); err != nil {
			b.Fatalf("login failed: %v", err)
		}
	}
}

func BenchmarkRefresh(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	set, err := engine.Login(context.Background(), "alice", "")
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		next, err := engine.Refresh(context.Background(), set.RSID, set.RefreshToken)
		if err != nil {
			b.Fatalf("refresh failed: %v", err)
		}
		set = next
	}
}

func BenchmarkValidate(b *testing.B) {
	engine, cleanup := newBenchmarkEngine(b)
	defer cleanup()

	set, err := engine.Login(context.Background(), "alice", "")
	if err != nil {
		b.Fatalf("login failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Validate(context.Background(), set.AccessToken); err != nil {
			b.Fatalf("validate failed: %v", err)
		}
	}
}
