package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goRotate/permission"
	"github.com/MrEthical07/goRotate/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// closer releases one resource owned by the app.
type closer func() error

// newSessionStore opens the configured backend. The memory backend runs an
// in-process Redis and is meant for development only.
func newSessionStore(ctx context.Context, cfg Config, log *slog.Logger) (session.Store, []closer, error) {
	switch cfg.Store {
	case StoreBolt:
		st, err := session.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("store.enabled", "backend", StoreBolt, "path", cfg.BoltPath)
		return st, []closer{st.Close}, nil

	case StoreMemory:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("starting in-process redis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		log.Warn("store.enabled", "backend", StoreMemory, "note", "sessions are lost on restart")
		return session.NewRedisStore(rdb, cfg.RedisPrefix), []closer{
			rdb.Close,
			func() error { mr.Close(); return nil },
		}, nil

	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		st := session.NewRedisStore(rdb, cfg.RedisPrefix)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := st.Ping(pingCtx); err != nil {
			log.Warn("store.ping.fail", "backend", StoreRedis, "err", err)
		}
		log.Info("store.enabled", "backend", StoreRedis, "addr", cfg.RedisAddr)
		return st, []closer{rdb.Close}, nil
	}
}

// newPermissionSource returns nil when no database is configured; the engine
// then issues tokens with empty claims.
func newPermissionSource(ctx context.Context, cfg Config, log *slog.Logger) (permission.Source, []closer, error) {
	if cfg.DatabaseURL == "" {
		log.Info("permissions.disabled", "reason", "no database_url")
		return nil, nil, nil
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing database_url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info("permissions.enabled", "source", "postgres")
	return permission.NewPostgresSource(pool), []closer{func() error { pool.Close(); return nil }}, nil
}
