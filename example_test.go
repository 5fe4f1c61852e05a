package goRotate_test

import (
	"context"
	"errors"

	goRotate "github.com/MrEthical07/goRotate"
	"github.com/MrEthical07/goRotate/permission"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := goRotate.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Envelope.Key = []byte("fedcba9876543210fedcba9876543210")

	engine, err := goRotate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPermissionSource(permission.NewStaticSource()).
		Build()
	if err != nil {
		return
	}
	defer engine.Close()
}

// ExampleEngine_Refresh shows a rotation call and boundary error mapping.
func ExampleEngine_Refresh() {
	var engine *goRotate.Engine
	set, err := engine.Refresh(context.Background(), "rsid", "ct.tag")
	if err != nil {
		// ErrTokenAlreadyUsed means the presented session was archived or
		// logged out; the client must sign in again.
		reauth := errors.Is(err, goRotate.ErrTokenAlreadyUsed)
		_, _ = reauth, goRotate.HTTPStatus(err)
		return
	}
	_ = set.RefreshToken
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goRotate.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot.Counters[goRotate.MetricRefreshSuccess]
}
