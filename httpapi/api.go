package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	goRotate "github.com/MrEthical07/goRotate"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 8 << 10

// Rotator is the engine surface the handlers use. *goRotate.Engine
// implements it.
type Rotator interface {
	Login(ctx context.Context, userID, contextID string) (*goRotate.TokenSet, error)
	Refresh(ctx context.Context, rsid, refreshToken string) (*goRotate.TokenSet, error)
	Archive(ctx context.Context, rsid, refreshToken string) error
	Logout(ctx context.Context, rsid, refreshToken string) error
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// IdentityResolver authenticates the caller of POST /auth/session. Primary
// credential checks live outside this module.
type IdentityResolver interface {
	ResolveIdentity(r *http.Request) (userID, contextID string, err error)
}

// IdentityResolverFunc adapts a function to [IdentityResolver].
type IdentityResolverFunc func(r *http.Request) (string, string, error)

func (f IdentityResolverFunc) ResolveIdentity(r *http.Request) (string, string, error) {
	return f(r)
}

// API holds the handler dependencies.
type API struct {
	rotator        Rotator
	identity       IdentityResolver
	cookies        CookieConfig
	logoutRedirect string
	logger         *slog.Logger
}

// Option configures the API instance.
type Option func(*API)

func WithIdentityResolver(res IdentityResolver) Option {
	return func(a *API) { a.identity = res }
}

func WithCookieConfig(cfg CookieConfig) Option {
	return func(a *API) { a.cookies = cfg }
}

// WithLogoutRedirect sets the target returned by POST /auth/logout.
func WithLogoutRedirect(target string) Option {
	return func(a *API) { a.logoutRedirect = target }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *API) { a.logger = logger }
}

// New creates an API. Without an identity resolver /auth/session is not
// mounted.
func New(rotator Rotator, opts ...Option) *API {
	a := &API{
		rotator:        rotator,
		logoutRedirect: "/",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Router returns a chi.Router with all routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	if a.identity != nil {
		r.Post("/auth/session", a.CreateSession)
	}
	r.Post("/auth/refresh", a.Refresh)
	r.Post("/auth/archive", a.Archive)
	r.Post("/auth/logout", a.Logout)
	return r
}

// TokenResponse is returned by session creation and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	RSID         string `json:"rsid"`
}

type credentialsRequest struct {
	RefreshToken string `json:"refreshToken"`
	RSID         string `json:"rsid"`
}

func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, contextID, err := a.identity.ResolveIdentity(r)
	if err != nil || userID == "" {
		writeError(w, http.StatusUnauthorized, goRotate.CodeUnauthorized)
		return
	}

	set, err := a.rotator.Login(requestContext(r), userID, contextID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.setSessionCookies(w, set)
	writeJSON(w, http.StatusOK, tokenResponse(set))
}

func (a *API) Refresh(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	set, err := a.rotator.Refresh(requestContext(r), creds.RSID, creds.RefreshToken)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.setSessionCookies(w, set)
	writeJSON(w, http.StatusOK, tokenResponse(set))
}

func (a *API) Archive(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.rotator.Archive(requestContext(r), creds.RSID, creds.RefreshToken); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"archived": true})
}

func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.rotator.Logout(requestContext(r), creds.RSID, creds.RefreshToken); err != nil {
		a.fail(w, r, err)
		return
	}
	a.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": a.logoutRedirect})
}

// readCredentials prefers the JSON body and falls back to cookies field by
// field.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, error) {
	var creds credentialsRequest
	if r.Body != nil {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&creds); err != nil && !errors.Is(err, io.EOF) {
			return credentialsRequest{}, goRotate.ErrValidation
		}
	}
	if creds.RSID == "" {
		if c, err := r.Cookie(CookieRSID); err == nil {
			creds.RSID = c.Value
		}
	}
	if creds.RefreshToken == "" {
		if c, err := r.Cookie(CookieRefreshToken); err == nil {
			creds.RefreshToken = c.Value
		}
	}
	if creds.RSID == "" || creds.RefreshToken == "" {
		return credentialsRequest{}, goRotate.ErrValidation
	}
	return creds, nil
}

func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = goRotate.WithClientIP(ctx, host)
	} else if r.RemoteAddr != "" {
		ctx = goRotate.WithClientIP(ctx, r.RemoteAddr)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = goRotate.WithUserAgent(ctx, ua)
	}
	return ctx
}

func tokenResponse(set *goRotate.TokenSet) TokenResponse {
	return TokenResponse{
		AccessToken:  set.AccessToken,
		RefreshToken: set.RefreshToken,
		RSID:         set.RSID,
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := goRotate.HTTPStatus(err); status >= http.StatusInternalServerError {
		a.logger.Warn("httpapi.request.fail", "path", r.URL.Path, "status", status, "code", goRotate.Code(err))
	}
	mapError(w, err)
}
