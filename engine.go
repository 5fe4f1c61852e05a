package goRotate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	internalaudit "github.com/MrEthical07/goRotate/internal/audit"
	"github.com/MrEthical07/goRotate/internal/flows"
	"github.com/MrEthical07/goRotate/jwt"
	"github.com/MrEthical07/goRotate/permission"
	"github.com/MrEthical07/goRotate/session"
)

// Engine runs the refresh-session lifecycle. Build one with [New].
type Engine struct {
	config     Config
	store      session.Store
	jwtManager *jwt.Manager
	resolver   *permission.Resolver
	ownsCache  bool
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time
	flowDeps   flows.Deps

	closeOnce sync.Once
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.jwtManager != nil
}

// Login issues a root session for a user whose primary credentials were
// already verified by the caller. contextID, when non-empty, is carried in
// the access token as parentContextId.
func (e *Engine) Login(ctx context.Context, userID, contextID string) (*TokenSet, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, userID, contextID, e.flowDeps)
	if res.Failure != flows.FailureNone {
		err := e.fail("login", res.Failure, res.Err, slog.String("user_id", userID))
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, userID, "", err, nil)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, res.UserID, res.RSID, nil, func() map[string]string {
		if contextID == "" {
			return nil
		}
		return map[string]string{"context_id": contextID}
	})
	return e.tokenSet(res.UserID, res.AccessToken, res.RefreshToken, res.Record), nil
}

// Refresh validates the presented envelope against the rsid's record and
// issues a child session. The parent stays valid until it is archived.
func (e *Engine) Refresh(ctx context.Context, rsid, refreshToken string) (*TokenSet, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricRefreshLatency, time.Since(start)) }()
	}

	res := flows.RunRefresh(ctx, rsid, refreshToken, e.flowDeps)
	if res.Failure != flows.FailureNone {
		err := e.fail("refresh", res.Failure, res.Err, slog.String("rsid", rsid))
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, res.UserID, rsid, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventRefreshSuccess, res.UserID, res.RSID, nil, func() map[string]string {
		return map[string]string{
			"parent_rsid":  res.ParentRSID,
			"parent_state": res.ParentState.String(),
		}
	})
	return e.tokenSet(res.UserID, res.AccessToken, res.RefreshToken, res.Record), nil
}

// Archive revokes the session after full envelope verification. Clients
// call it on the old rsid once a Refresh has succeeded.
func (e *Engine) Archive(ctx context.Context, rsid, refreshToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := flows.RunArchive(ctx, rsid, refreshToken, e.flowDeps)
	if res.Failure != flows.FailureNone {
		err := e.fail("archive", res.Failure, res.Err, slog.String("rsid", rsid))
		e.metricInc(MetricArchiveFailure)
		e.emitAudit(ctx, auditEventArchiveFailure, res.UserID, rsid, err, nil)
		return err
	}

	e.metricInc(MetricArchiveSuccess)
	e.emitAudit(ctx, auditEventArchiveSuccess, res.UserID, rsid, nil, nil)
	return nil
}

// Logout revokes the session and marks it logged out. Other sessions of the
// same chain are not touched.
func (e *Engine) Logout(ctx context.Context, rsid, refreshToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := flows.RunLogout(ctx, rsid, refreshToken, e.flowDeps)
	if res.Failure != flows.FailureNone {
		err := e.fail("logout", res.Failure, res.Err, slog.String("rsid", rsid))
		e.metricInc(MetricLogoutFailure)
		e.emitAudit(ctx, auditEventLogoutFailure, res.UserID, rsid, err, nil)
		return err
	}

	e.metricInc(MetricLogoutSuccess)
	e.emitAudit(ctx, auditEventLogoutSuccess, res.UserID, rsid, nil, nil)
	return nil
}

// Validate verifies an access token and returns its claims. No store round
// trip is made.
func (e *Engine) Validate(ctx context.Context, accessToken string) (*AccessClaims, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}
	if accessToken == "" {
		e.metricInc(MetricValidateFailure)
		return nil, ErrUnauthorized
	}

	res := flows.RunValidate(accessToken, e.flowDeps.Validate)
	if res.Failure != flows.ValidateFailureNone {
		e.metricInc(MetricValidateFailure)
		if res.Err != nil {
			e.logger.DebugContext(ctx, "gorotate: access token rejected", slog.Any("error", res.Err))
		}
		return nil, ErrUnauthorized
	}

	e.metricInc(MetricValidateSuccess)
	return res.Claims, nil
}

// InvalidatePermissions drops the cached snapshot of userID.
func (e *Engine) InvalidatePermissions(userID string) {
	if e == nil || e.resolver == nil {
		return
	}
	e.resolver.Invalidate(userID)
}

// InvalidateAllPermissions empties the permission cache.
func (e *Engine) InvalidateAllPermissions() {
	if e == nil || e.resolver == nil || e.resolver.Cache() == nil {
		return
	}
	e.resolver.Cache().InvalidateAll()
}

// Health pings the session store.
func (e *Engine) Health(ctx context.Context) Health {
	if !e.ready() {
		return Health{SessionStore: ErrEngineNotReady}
	}
	return Health{SessionStore: e.store.Ping(ctx)}
}

// Close stops the audit dispatcher, draining queued events, and the
// permission cache janitor when the engine created the cache.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if e.audit != nil {
			e.audit.Close()
		}
		if e.ownsCache && e.resolver != nil && e.resolver.Cache() != nil {
			e.resolver.Cache().Close()
		}
	})
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AccessTTL is the lifetime of minted access tokens.
func (e *Engine) AccessTTL() time.Duration { return e.config.JWT.AccessTTL }

// RefreshTTL is the lifetime of every session record.
func (e *Engine) RefreshTTL() time.Duration { return e.config.Session.RefreshTTL }

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) tokenSet(userID, access, refreshToken string, rec *session.Record) *TokenSet {
	return &TokenSet{
		UserID:           userID,
		RSID:             rec.RSID,
		AccessToken:      access,
		RefreshToken:     refreshToken,
		IssuedAt:         rec.CreatedAt,
		AccessExpiresAt:  rec.CreatedAt.Add(e.config.JWT.AccessTTL),
		RefreshExpiresAt: rec.ExpiresAt,
	}
}

// fail maps a flow failure to its public sentinel, counts it and logs the
// underlying cause. The cause never leaves the engine.
func (e *Engine) fail(op string, kind flows.FailureKind, cause error, attrs ...slog.Attr) error {
	var (
		err   error
		id    MetricID
		level = slog.LevelDebug
	)
	switch kind {
	case flows.FailureValidation:
		err, id = ErrValidation, MetricValidationRejected
	case flows.FailureInvalid:
		err, id = ErrInvalidRefresh, MetricInvalidRefresh
	case flows.FailureAlreadyUsed:
		err, id = ErrTokenAlreadyUsed, MetricTokenAlreadyUsed
		level = slog.LevelInfo
	case flows.FailureMismatch:
		err, id = ErrUnauthorized, MetricRefreshMismatch
		level = slog.LevelInfo
	case flows.FailureStore:
		err, id = ErrStoreUnavailable, MetricStoreUnavailable
		level = slog.LevelWarn
	default:
		err = ErrInternal
		level = slog.LevelError
	}
	if err != ErrInternal {
		e.metricInc(id)
	}

	attrs = append(attrs,
		slog.String("op", op),
		slog.String("failure", kind.String()),
		slog.Any("error", cause),
	)
	e.logger.LogAttrs(context.Background(), level, "gorotate: "+op+" failed", attrs...)
	return err
}
