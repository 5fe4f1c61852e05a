package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/awnumar/memguard"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the GCM nonce length in bytes.
	IVSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

var (
	// ErrDecrypt is returned for any authentication failure: wrong IV, wrong
	// key, flipped ciphertext or tag bits.
	ErrDecrypt = errors.New("envelope decryption failed")
	// ErrMalformed is returned when a wire value cannot be split or decoded.
	ErrMalformed = errors.New("malformed envelope")
	// ErrInvalidKey is returned when the configured key is not 32 bytes.
	ErrInvalidKey = errors.New("envelope key must be 32 bytes")
)

// Sealed is the output of a single encryption.
type Sealed struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
}

// Cipher encrypts and decrypts with one long-lived AES-256-GCM key.
//
// Cipher is safe for concurrent use.
type Cipher struct {
	key *memguard.Enclave
}

// NewCipher seals a copy of key into an enclave. The caller's slice is left
// untouched.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	buf := make([]byte, KeySize)
	copy(buf, key)
	return &Cipher{key: memguard.NewEnclave(buf)}, nil
}

// ParseKey accepts a 64-character hex string or a base64 string that decodes
// to exactly 32 bytes.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == 2*KeySize {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	if c == nil || c.key == nil {
		return nil, ErrInvalidKey
	}
	buf, err := c.key.Open()
	if err != nil {
		return nil, fmt.Errorf("open key enclave: %w", err)
	}
	defer buf.Destroy()

	block, err := aes.NewCipher(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a freshly generated random IV.
func (c *Cipher) Encrypt(plaintext []byte) (Sealed, error) {
	gcm, err := c.aead()
	if err != nil {
		return Sealed{}, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Sealed{}, fmt.Errorf("iv generation: %w", err)
	}

	out := gcm.Seal(nil, iv, plaintext, nil)
	split := len(out) - TagSize

	return Sealed{
		Ciphertext: out[:split],
		IV:         iv,
		AuthTag:    out[split:],
	}, nil
}

// Decrypt opens ciphertext with the given IV and tag. Any mismatch yields
// ErrDecrypt and no plaintext.
func (c *Cipher) Decrypt(ciphertext, iv, authTag []byte) ([]byte, error) {
	if len(iv) != IVSize || len(authTag) != TagSize {
		return nil, ErrDecrypt
	}
	gcm, err := c.aead()
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Pack renders the client-facing wire value. The IV is deliberately omitted.
func Pack(s Sealed) string {
	return base64.StdEncoding.EncodeToString(s.Ciphertext) + "." + base64.StdEncoding.EncodeToString(s.AuthTag)
}

// Unpack splits a wire value into ciphertext and auth tag.
func Unpack(wire string) (ciphertext, authTag []byte, err error) {
	ctPart, tagPart, ok := strings.Cut(wire, ".")
	if !ok || ctPart == "" || tagPart == "" || strings.Contains(tagPart, ".") {
		return nil, nil, ErrMalformed
	}
	ciphertext, err = base64.StdEncoding.DecodeString(ctPart)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ciphertext: %v", ErrMalformed, err)
	}
	authTag, err = base64.StdEncoding.DecodeString(tagPart)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: auth tag: %v", ErrMalformed, err)
	}
	return ciphertext, authTag, nil
}

// EncodeIV renders an IV for storage in a session record.
func EncodeIV(iv []byte) string {
	return hex.EncodeToString(iv)
}

// DecodeIV parses a stored IV.
func DecodeIV(s string) ([]byte, error) {
	iv, err := hex.DecodeString(s)
	if err != nil || len(iv) != IVSize {
		return nil, ErrDecrypt
	}
	return iv, nil
}
