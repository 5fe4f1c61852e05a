package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goRotate/envelope"
	"github.com/MrEthical07/goRotate/session"
)

// SessionStore is the subset of session.Store the flows use.
type SessionStore interface {
	Put(ctx context.Context, rec *session.Record, ttl time.Duration) error
	Get(ctx context.Context, rsid string) (*session.Record, error)
	Mutate(ctx context.Context, rsid string, p session.Patch) error
}

// ChainCipher seals and opens rotation envelopes.
type ChainCipher interface {
	SealChain(ch envelope.Chain) (string, []byte, error)
	OpenChain(wire string, iv []byte) (envelope.Chain, error)
}

// Hasher is the slow hash protecting the root fingerprint.
type Hasher interface {
	Hash(value string) (string, error)
	Verify(value, encoded string) (bool, error)
}

// SessionDeps groups what every refresh-session flow touches.
type SessionDeps struct {
	Store      SessionStore
	Cipher     ChainCipher
	Hasher     Hasher
	RefreshTTL time.Duration
	Now        func() time.Time
}

// IssueDeps groups token minting for Login and Refresh.
type IssueDeps struct {
	Claims          ClaimsDeps
	NewRefreshToken func() (string, error)
	Fingerprint     func(string) string
	NewRSID         func() string
}

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Session  SessionDeps
	Issue    IssueDeps
	Validate ValidateDeps
}

// FailureKind classifies flow failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureValidation: malformed or missing input.
	FailureValidation
	// FailureInvalid: record absent, incomplete, or envelope undecryptable.
	FailureInvalid
	// FailureAlreadyUsed: record revoked or logged out.
	FailureAlreadyUsed
	// FailureMismatch: slow-hash comparison failed.
	FailureMismatch
	// FailureStore: transient store outage.
	FailureStore
	// FailureInternal: signing, randomness or encryption failed.
	FailureInternal
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureValidation:
		return "validation"
	case FailureInvalid:
		return "invalid"
	case FailureAlreadyUsed:
		return "already_used"
	case FailureMismatch:
		return "mismatch"
	case FailureStore:
		return "store"
	case FailureInternal:
		return "internal"
	default:
		return "unknown"
	}
}
