package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goRotate/envelope"
	"github.com/MrEthical07/goRotate/session"
)

var (
	errMissingInput = errors.New("rsid and refresh token are required")
	errIncomplete   = errors.New("session record is incomplete")
	errMismatch     = errors.New("refresh token does not match session")
)

// verified is the outcome of the shared validation steps.
type verified struct {
	record        *session.Record
	chain         envelope.Chain
	valueToVerify string
	state         session.State
}

// verify runs the validation steps shared by Refresh, Archive and Logout:
// lookup, revocation flags, completeness, decryption with the stored IV,
// root-anchored value selection and the slow-hash comparison. Nothing is
// written on any failure path.
func verify(ctx context.Context, rsid, wire string, ev session.Event, deps SessionDeps) (verified, FailureKind, error) {
	if rsid == "" || wire == "" {
		return verified{}, FailureValidation, errMissingInput
	}

	rec, err := deps.Store.Get(ctx, rsid)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotFound):
		_, terr := session.Next(session.StateExpired, ev)
		return verified{}, FailureInvalid, terr
	case errors.Is(err, session.ErrCorrupt):
		return verified{}, FailureInvalid, err
	default:
		return verified{}, FailureStore, err
	}

	if _, err := session.Next(session.StateOf(rec, false), ev); err != nil {
		return verified{}, FailureAlreadyUsed, err
	}

	if !rec.Complete() {
		return verified{}, FailureInvalid, errIncomplete
	}

	iv, err := envelope.DecodeIV(rec.IV)
	if err != nil {
		return verified{}, FailureInvalid, err
	}
	chain, err := deps.Cipher.OpenChain(wire, iv)
	if err != nil {
		return verified{}, FailureInvalid, err
	}

	value := chain.VerificationValue()
	ok, err := deps.Hasher.Verify(value, rec.HashedRefreshToken)
	if err != nil {
		return verified{}, FailureMismatch, fmt.Errorf("%w: %v", errMismatch, err)
	}
	if !ok {
		return verified{}, FailureMismatch, errMismatch
	}

	return verified{
		record:        rec,
		chain:         chain,
		valueToVerify: value,
		state:         session.StateOf(rec, chain.Parent == ""),
	}, FailureNone, nil
}
