package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyValue is returned when hashing an empty input.
var ErrEmptyValue = errors.New("password: empty value")

// Hasher hashes a value once and later compares candidates against the
// stored encoding. Verify returns (false, nil) on a plain mismatch and an
// error only when the encoded hash itself is unusable.
type Hasher interface {
	Hash(value string) (string, error)
	Verify(value, encoded string) (bool, error)
}

// DefaultBcryptCost matches bcrypt.DefaultCost.
const DefaultBcryptCost = bcrypt.DefaultCost

// Bcrypt is the default [Hasher].
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher. A zero cost selects DefaultBcryptCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: bcrypt cost must be within [%d,%d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int { return b.cost }

// Hash returns the bcrypt encoding of value.
func (b *Bcrypt) Hash(value string) (string, error) {
	if value == "" {
		return "", ErrEmptyValue
	}
	// bcrypt ignores input past 72 bytes; fingerprints are 64 hex chars.
	out, err := bcrypt.GenerateFromPassword([]byte(value), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify compares value against a bcrypt encoding.
func (b *Bcrypt) Verify(value, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(value))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

var (
	_ Hasher = (*Bcrypt)(nil)
	_ Hasher = (*Argon2)(nil)
)
