package refresh

import (
	"encoding/base64"
	"testing"
)

func TestGenerateProducesDistinctFixedLengthTokens(t *testing.T) {
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		tok, err := Generate()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("token is not base64: %v", err)
		}
		if len(raw) != TokenSize {
			t.Fatalf("expected %d raw bytes, got %d", TokenSize, len(raw))
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token generated: %s", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestFingerprintDeterministicAndShaped(t *testing.T) {
	a := Fingerprint("token-a")
	if a != Fingerprint("token-a") {
		t.Fatal("fingerprint must be deterministic")
	}
	if a == Fingerprint("token-b") {
		t.Fatal("different tokens must not share a fingerprint")
	}
	if !ValidFingerprint(a) {
		t.Fatalf("fingerprint %q should validate", a)
	}
	if ValidFingerprint("xyz") || ValidFingerprint(a[:63]+"g") {
		t.Fatal("malformed fingerprints must not validate")
	}
}
