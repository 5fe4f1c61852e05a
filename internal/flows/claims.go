package flows

import (
	"context"

	"github.com/MrEthical07/goRotate/jwt"
	"github.com/MrEthical07/goRotate/permission"
)

// ClaimsDeps captures the claims builder's collaborators.
type ClaimsDeps struct {
	// Lookup resolves the user's snapshot, cache first.
	Lookup func(ctx context.Context, userID string) (permission.Snapshot, error)
	// Invalidate drops the user's cache entry after every mint.
	Invalidate func(userID string)
	Sign       func(jwt.AccessInput) (string, error)
	Warn       func(string, ...any)
}

// MintAccess builds and signs an access token for userID.
//
// A failed permission lookup does not fail the mint: the token is signed
// with no roles and no permissions. The user's cache entry is invalidated
// after every attempt, so the next mint always reads the source again.
func MintAccess(ctx context.Context, userID, contextID string, deps ClaimsDeps) (string, error) {
	if deps.Invalidate != nil {
		defer deps.Invalidate(userID)
	}

	in := jwt.AccessInput{UserID: userID, ParentContextID: contextID}
	if deps.Lookup != nil {
		snap, err := deps.Lookup(ctx, userID)
		if err != nil {
			if deps.Warn != nil {
				deps.Warn("gorotate: permission lookup failed; minting empty claims", "user_id", userID, "error", err)
			}
		} else {
			in.Roles = snap.RoleNames()
			in.Permissions = snap.PermissionCodes()
		}
	}

	return deps.Sign(in)
}
