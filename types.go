package goRotate

import (
	"time"

	"github.com/MrEthical07/goRotate/jwt"
)

// TokenSet is returned by [Engine.Login] and [Engine.Refresh].
//
// RefreshToken is the envelope wire value (ciphertext "." tag). RSID names
// the session record the envelope is bound to; both must be presented
// together on the next Refresh, Archive or Logout.
type TokenSet struct {
	UserID           string
	RSID             string
	AccessToken      string
	RefreshToken     string
	IssuedAt         time.Time
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// AccessClaims is the payload of a validated access token.
type AccessClaims = jwt.AccessClaims

// Health reports backend reachability.
type Health struct {
	SessionStore error
}

// OK reports whether every probe succeeded.
func (h Health) OK() bool { return h.SessionStore == nil }
