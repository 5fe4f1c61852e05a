// Package app wires the rotated service: config, logging, store backends,
// the permission source and the HTTP surface.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	goRotate "github.com/MrEthical07/goRotate"
	"github.com/MrEthical07/goRotate/httpapi"
	promexport "github.com/MrEthical07/goRotate/metrics/export/prometheus"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// App owns the engine and every resource opened for it.
type App struct {
	cfg     Config
	log     *slog.Logger
	engine  *goRotate.Engine
	closers []closer
}

// New opens the store and permission source and builds the engine.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	store, closers, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closers...)

	source, closers, err := newPermissionSource(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closers...)

	b := goRotate.New().
		WithConfig(engineCfg).
		WithSessionStore(store).
		WithLogger(log)
	if source != nil {
		b.WithPermissionSource(source)
	}

	engine, err := b.Build()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = engine
	return a, nil
}

// Engine exposes the wired engine.
func (a *App) Engine() *goRotate.Engine { return a.engine }

// Handler builds the full HTTP surface.
func (a *App) Handler() http.Handler {
	opts := []httpapi.Option{
		httpapi.WithLogger(a.log),
		httpapi.WithLogoutRedirect(a.cfg.LogoutRedirect),
		httpapi.WithCookieConfig(httpapi.CookieConfig{
			Domain: a.cfg.CookieDomain,
			Secure: a.cfg.CookieSecure,
		}),
	}
	if a.cfg.IdentityHeader != "" {
		opts = append(opts, httpapi.WithIdentityResolver(headerIdentity{
			user:    a.cfg.IdentityHeader,
			context: a.cfg.ContextHeader,
		}))
	}
	api := httpapi.New(a.engine, opts...)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(a.log))

	r.Get("/healthz", a.healthz)
	if a.cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promexport.NewCollector(a.engine).Handler())
	}
	r.Mount("/", api.Router())

	if len(a.cfg.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h := a.engine.Health(ctx); !h.OK() {
		a.log.Warn("health.fail", "err", h.SessionStore)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "store", a.cfg.Store)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}
	a.log.Info("server.stopped")
	return nil
}

// Close stops the engine and releases resources in reverse order of
// acquisition.
func (a *App) Close() {
	if a.engine != nil {
		a.engine.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("resource.close.fail", "err", err)
		}
	}
	a.closers = nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
