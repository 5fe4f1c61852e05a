package refresh

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// TokenSize is the number of random bytes behind every refresh token.
const TokenSize = 48

// Generate returns a fresh opaque refresh token.
func Generate() (string, error) {
	var raw [TokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// Fingerprint returns the hex BLAKE3-256 digest of token. The digest is 64
// characters, which keeps it inside bcrypt's 72-byte input limit.
func Fingerprint(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidFingerprint reports whether s has the shape produced by Fingerprint.
func ValidFingerprint(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
