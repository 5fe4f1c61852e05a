package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goRotate/session"
)

// RevokeResult reports the outcome of Archive or Logout.
type RevokeResult struct {
	Failure FailureKind
	Err     error
	UserID  string
	RSID    string
	// State is the state the record reached.
	State session.State
}

// RunArchive marks a session revoked after full envelope verification.
func RunArchive(ctx context.Context, rsid, refreshToken string, deps Deps) RevokeResult {
	return runRevoke(ctx, rsid, refreshToken, session.EventArchive, deps)
}

// RunLogout marks a session revoked and logged out after full envelope
// verification.
func RunLogout(ctx context.Context, rsid, refreshToken string, deps Deps) RevokeResult {
	return runRevoke(ctx, rsid, refreshToken, session.EventLogout, deps)
}

func runRevoke(ctx context.Context, rsid, refreshToken string, ev session.Event, deps Deps) RevokeResult {
	v, kind, err := verify(ctx, rsid, refreshToken, ev, deps.Session)
	if err != nil {
		return RevokeResult{Failure: kind, Err: err, RSID: rsid}
	}

	next, err := session.Next(v.state, ev)
	if err != nil {
		return RevokeResult{Failure: FailureAlreadyUsed, Err: err, UserID: v.record.UserID, RSID: rsid}
	}

	now := deps.Session.Now()
	patch := session.Patch{RevokedAt: now}
	if ev == session.EventLogout {
		patch.LoggedOutAt = now
	}

	if err := deps.Session.Store.Mutate(ctx, rsid, patch); err != nil {
		kind := storeFailure(err)
		if errors.Is(err, session.ErrNotFound) {
			kind = FailureInvalid
		}
		return RevokeResult{Failure: kind, Err: err, UserID: v.record.UserID, RSID: rsid}
	}

	return RevokeResult{UserID: v.record.UserID, RSID: rsid, State: next}
}
