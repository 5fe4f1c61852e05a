package goRotate

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidRefresh is returned when the session is absent, incomplete,
	// or its envelope cannot be decrypted.
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// ErrTokenAlreadyUsed is returned for revoked or logged-out sessions.
	ErrTokenAlreadyUsed = errors.New("refresh token already used")
	// ErrUnauthorized is returned when the envelope does not verify against
	// the session's stored hash, or an access token is rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable is returned on transient session-store outages.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrEngineNotReady is returned when a nil or unbuilt engine is used.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInternal is returned when signing, randomness or encryption fails.
	ErrInternal = errors.New("internal error")
)

// Error codes exposed at the HTTP boundary.
const (
	CodeValidation       = "VALIDATION"
	CodeInvalidRefresh   = "INVALID_RT"
	CodeTokenAlreadyUsed = "TOKEN_ALREADY_USED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

// Code returns the public error code for err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrInvalidRefresh):
		return CodeInvalidRefresh
	case errors.Is(err, ErrTokenAlreadyUsed):
		return CodeTokenAlreadyUsed
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	switch Code(err) {
	case "":
		return http.StatusOK
	case CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidRefresh, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTokenAlreadyUsed:
		return http.StatusForbidden
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
