package goRotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goRotate/envelope"
	internalaudit "github.com/MrEthical07/goRotate/internal/audit"
	"github.com/MrEthical07/goRotate/internal/flows"
	"github.com/MrEthical07/goRotate/jwt"
	"github.com/MrEthical07/goRotate/password"
	"github.com/MrEthical07/goRotate/permission"
	"github.com/MrEthical07/goRotate/refresh"
	"github.com/MrEthical07/goRotate/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.Store

	source permission.Source
	cache  *permission.Cache

	auditSink     AuditSink
	loginRecorder LoginRecorder

	logger *slog.Logger
	now    func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis stores sessions in Redis under Config.Session.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore overrides the session backend. It takes precedence over
// WithRedis.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithPermissionSource(src permission.Source) *Builder {
	b.source = src
	return b
}

// WithPermissionCache injects a cache the caller owns. Engine.Close leaves
// an injected cache running.
func (b *Builder) WithPermissionCache(cache *permission.Cache) *Builder {
	b.cache = cache
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLoginRecorder hands every successful Login to rec asynchronously.
func (b *Builder) WithLoginRecorder(rec LoginRecorder) *Builder {
	b.loginRecorder = rec
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for every timestamp the engine produces.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("session store required: call WithRedis or WithSessionStore")
		}
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}

	cipher, err := envelope.NewCipher(cfg.Envelope.Key)
	if err != nil {
		return nil, err
	}

	hasher, err := buildHasher(cfg.Hash)
	if err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		RequireIAT:    true,
		KeyID:         cfg.JWT.KeyID,
		Now:           now,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	cache := b.cache
	ownsCache := false
	if cache == nil {
		cache = permission.NewCache(permission.CacheConfig{
			Capacity:      cfg.Permission.CacheCapacity,
			TTL:           cfg.Permission.CacheTTL,
			SweepInterval: cfg.Permission.SweepInterval,
			Now:           now,
		})
		ownsCache = true
	}
	source := b.source
	if source == nil {
		logger.Info("gorotate: no permission source configured; access tokens carry empty claims")
		source = permission.NewStaticSource()
	}
	resolver := permission.NewResolver(cache, source)

	metrics := NewMetrics(cfg.Metrics)

	// Audit.Enabled gates the audit sink only. Login history is always
	// handed off when a recorder is configured.
	var sinks internalaudit.MultiSink
	if b.auditSink != nil && cfg.Audit.Enabled {
		sinks = append(sinks, b.auditSink)
	}
	if b.loginRecorder != nil {
		sinks = append(sinks, loginHistorySink{recorder: b.loginRecorder, warn: logger.Warn})
	}
	var dispatcher *internalaudit.Dispatcher
	if len(sinks) > 0 {
		bufferSize := cfg.Audit.BufferSize
		if bufferSize <= 0 {
			bufferSize = defaultAuditBufferSize
		}
		dispatcher = internalaudit.NewDispatcher(internalaudit.Config{
			BufferSize: bufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
			Logger:     logger,
		}, sinks)
	}

	e := &Engine{
		config:     cfg,
		store:      store,
		jwtManager: jwtManager,
		resolver:   resolver,
		ownsCache:  ownsCache,
		audit:      dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        now,
	}

	e.flowDeps = flows.Deps{
		Session: flows.SessionDeps{
			Store:      store,
			Cipher:     cipher,
			Hasher:     hasher,
			RefreshTTL: cfg.Session.RefreshTTL,
			Now:        now,
		},
		Issue: flows.IssueDeps{
			Claims: flows.ClaimsDeps{
				Lookup: func(ctx context.Context, userID string) (permission.Snapshot, error) {
					return resolver.Lookup(ctx, userID, false)
				},
				Invalidate: resolver.Invalidate,
				Sign:       jwtManager.CreateAccess,
				Warn: func(msg string, args ...any) {
					metrics.Inc(MetricClaimsFallback)
					logger.Warn(msg, args...)
				},
			},
			NewRefreshToken: refresh.Generate,
			Fingerprint:     refresh.Fingerprint,
			NewRSID:         uuid.NewString,
		},
		Validate: flows.ValidateDeps{
			ParseAccess:  jwtManager.ParseAccess,
			Now:          now,
			MaxClockSkew: cfg.Validation.MaxClockSkew,
		},
	}

	b.built = true
	return e, nil
}

func buildHasher(cfg HashConfig) (password.Hasher, error) {
	if cfg.Algorithm == HashArgon2id {
		h, err := password.NewArgon2(cfg.Argon2)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	h, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return h, nil
}
