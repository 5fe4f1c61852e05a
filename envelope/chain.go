package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Parent is the inherited verification value of a rotated session. The zero
// value marks a root session and is encoded as the JSON number 0.
type Parent string

// IsRoot reports whether the chain was issued at login rather than rotated.
func (p Parent) IsRoot() bool { return p == "" }

func (p Parent) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

func (p *Parent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" || s == "0" {
			*p = ""
			return nil
		}
		*p = Parent(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n.String() != "0" {
		return errors.New("parent must be 0 or a string")
	}
	*p = ""
	return nil
}

// Chain is the plaintext sealed inside every rotation envelope.
type Chain struct {
	RefreshTokenHash string `json:"refreshTokenHash"`
	Parent           Parent `json:"parent"`
}

// VerificationValue is the value compared against the session's stored slow
// hash. Rotated chains always verify against the root token's value.
func (c Chain) VerificationValue() string {
	if c.Parent.IsRoot() {
		return c.RefreshTokenHash
	}
	return string(c.Parent)
}

// SealChain encrypts ch and returns the wire value plus the IV that must be
// persisted alongside the session.
func (c *Cipher) SealChain(ch Chain) (wire string, iv []byte, err error) {
	plaintext, err := json.Marshal(ch)
	if err != nil {
		return "", nil, err
	}
	sealed, err := c.Encrypt(plaintext)
	if err != nil {
		return "", nil, err
	}
	return Pack(sealed), sealed.IV, nil
}

// OpenChain decrypts a wire value with the stored IV.
func (c *Cipher) OpenChain(wire string, iv []byte) (Chain, error) {
	ciphertext, tag, err := Unpack(wire)
	if err != nil {
		return Chain{}, err
	}
	plaintext, err := c.Decrypt(ciphertext, iv, tag)
	if err != nil {
		return Chain{}, err
	}

	var ch Chain
	if err := json.Unmarshal(plaintext, &ch); err != nil {
		return Chain{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ch.RefreshTokenHash == "" {
		return Chain{}, fmt.Errorf("%w: empty refresh token hash", ErrMalformed)
	}
	return ch, nil
}
