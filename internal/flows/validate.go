package flows

import (
	"time"

	"github.com/MrEthical07/goRotate/jwt"
)

// ValidateFailureKind classifies access-token validation failures.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureUnauthorized
	ValidateFailureTokenClockSkew
)

// ValidateResult returns either parsed claims or a classified failure.
type ValidateResult struct {
	Failure ValidateFailureKind
	Err     error
	Claims  *jwt.AccessClaims
}

// ValidateDeps captures stateless access-token validation dependencies.
type ValidateDeps struct {
	ParseAccess  func(string) (*jwt.AccessClaims, error)
	Now          func() time.Time
	MaxClockSkew time.Duration
}

// RunValidate parses an access token. Access tokens are self-contained, so
// no store lookup happens here.
func RunValidate(tokenStr string, deps ValidateDeps) ValidateResult {
	claims, err := deps.ParseAccess(tokenStr)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureUnauthorized, Err: err}
	}
	if deps.MaxClockSkew >= 0 && claims.IssuedAt != nil {
		if claims.IssuedAt.Time.After(deps.Now().Add(deps.MaxClockSkew)) {
			return ValidateResult{Failure: ValidateFailureTokenClockSkew}
		}
	}
	return ValidateResult{Claims: claims}
}
