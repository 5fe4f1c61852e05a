package flows

import (
	"context"

	"github.com/MrEthical07/goRotate/envelope"
	"github.com/MrEthical07/goRotate/session"
)

// RefreshResult carries the child session's tokens or failure metadata.
type RefreshResult struct {
	Failure      FailureKind
	Err          error
	UserID       string
	ParentRSID   string
	ParentState  session.State
	RSID         string
	AccessToken  string
	RefreshToken string
	Record       *session.Record
}

// RunRefresh validates the presented envelope and spawns a child session.
// The parent record is left untouched; retiring it is a separate Archive
// call. Two concurrent calls for one rsid can both succeed and produce two
// children.
func RunRefresh(ctx context.Context, rsid, refreshToken string, deps Deps) RefreshResult {
	v, kind, err := verify(ctx, rsid, refreshToken, session.EventRefresh, deps.Session)
	if err != nil {
		return RefreshResult{Failure: kind, Err: err, ParentRSID: rsid}
	}

	out, kind, err := issue(ctx, issueRequest{
		userID:        v.record.UserID,
		parent:        envelope.Parent(v.valueToVerify),
		inheritedHash: v.record.HashedRefreshToken,
	}, deps)
	if err != nil {
		return RefreshResult{
			Failure:     kind,
			Err:         err,
			UserID:      v.record.UserID,
			ParentRSID:  rsid,
			ParentState: v.state,
		}
	}

	return RefreshResult{
		UserID:       v.record.UserID,
		ParentRSID:   rsid,
		ParentState:  v.state,
		RSID:         out.record.RSID,
		AccessToken:  out.accessToken,
		RefreshToken: out.refreshToken,
		Record:       out.record,
	}
}
