package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goRotate/envelope"
	"github.com/MrEthical07/goRotate/session"
)

// LoginResult carries the issued token set or failure metadata.
type LoginResult struct {
	Failure      FailureKind
	Err          error
	UserID       string
	RSID         string
	AccessToken  string
	RefreshToken string
	Record       *session.Record
}

// RunLogin issues a root session for an already-authenticated user.
func RunLogin(ctx context.Context, userID, contextID string, deps Deps) LoginResult {
	if userID == "" {
		return LoginResult{Failure: FailureValidation, Err: errors.New("user id is required")}
	}

	out, kind, err := issue(ctx, issueRequest{
		userID:    userID,
		contextID: contextID,
	}, deps)
	if err != nil {
		return LoginResult{Failure: kind, Err: err, UserID: userID}
	}

	return LoginResult{
		UserID:       userID,
		RSID:         out.record.RSID,
		AccessToken:  out.accessToken,
		RefreshToken: out.refreshToken,
		Record:       out.record,
	}
}

type issueRequest struct {
	userID    string
	contextID string
	// parent is empty for a root session, else the chain's root value.
	parent envelope.Parent
	// inheritedHash is the stored root hash a child carries forward.
	inheritedHash string
}

type issued struct {
	record       *session.Record
	accessToken  string
	refreshToken string
}

// issue mints an access token and a fresh refresh token, seals the chain
// state and persists the new record.
func issue(ctx context.Context, req issueRequest, deps Deps) (issued, FailureKind, error) {
	access, err := MintAccess(ctx, req.userID, req.contextID, deps.Issue.Claims)
	if err != nil {
		return issued{}, FailureInternal, err
	}

	token, err := deps.Issue.NewRefreshToken()
	if err != nil {
		return issued{}, FailureInternal, err
	}
	fingerprint := deps.Issue.Fingerprint(token)

	hashed := req.inheritedHash
	if hashed == "" {
		if hashed, err = deps.Session.Hasher.Hash(fingerprint); err != nil {
			return issued{}, FailureInternal, err
		}
	}

	wire, iv, err := deps.Session.Cipher.SealChain(envelope.Chain{
		RefreshTokenHash: fingerprint,
		Parent:           req.parent,
	})
	if err != nil {
		return issued{}, FailureInternal, err
	}

	now := deps.Session.Now()
	ttl := deps.Session.RefreshTTL
	rec := &session.Record{
		RSID:               deps.Issue.NewRSID(),
		UserID:             req.userID,
		HashedRefreshToken: hashed,
		HashedAccessToken:  deps.Issue.Fingerprint(access),
		IV:                 envelope.EncodeIV(iv),
		CreatedAt:          now,
		ExpiresAt:          now.Add(ttl),
		ExpiresIn:          ttl.Truncate(time.Second),
	}
	if err := deps.Session.Store.Put(ctx, rec, ttl); err != nil {
		return issued{}, storeFailure(err), err
	}
	rec.TTL = ttl

	return issued{record: rec, accessToken: access, refreshToken: wire}, FailureNone, nil
}

func storeFailure(err error) FailureKind {
	if errors.Is(err, session.ErrStoreUnavailable) {
		return FailureStore
	}
	return FailureInternal
}
