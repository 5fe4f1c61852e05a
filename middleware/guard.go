package middleware

import (
	"context"
	"net/http"
	"strings"

	goRotate "github.com/MrEthical07/goRotate"
)

// AccessCookieName is the cookie the HTTP boundary sets for access tokens.
const AccessCookieName = "accessToken"

// Validator verifies an access token. *goRotate.Engine implements it.
type Validator interface {
	Validate(ctx context.Context, accessToken string) (*goRotate.AccessClaims, error)
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims stored by [Guard].
func ClaimsFromContext(ctx context.Context) (*goRotate.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*goRotate.AccessClaims)
	return claims, ok
}

// Guard rejects requests without a valid access token with 401.
func Guard(v Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				writeUnauthorized(w)
				return
			}

			token, ok := accessToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			claims, err := v.Validate(r.Context(), token)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
