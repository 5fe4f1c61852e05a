package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := h.Hash(fingerprint)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Fatalf("unexpected bcrypt prefix: %s", hash)
	}

	ok, err := h.Verify(fingerprint, hash)
	if err != nil || !ok {
		t.Fatalf("expected match: ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify(strings.Repeat("f", 64), hash)
	if err != nil {
		t.Fatalf("mismatch must not be an error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
}

func TestBcryptVerifyCorruptHash(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	if _, err := h.Verify(fingerprint, "garbage"); err == nil {
		t.Fatal("expected corrupt hash to error")
	}
}

func TestNewBcryptCostBounds(t *testing.T) {
	h, err := NewBcrypt(0)
	if err != nil {
		t.Fatalf("zero cost should select default: %v", err)
	}
	if h.Cost() != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, h.Cost())
	}
	if _, err := NewBcrypt(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected out-of-range cost to be rejected")
	}
	if _, err := h.Hash(""); err != ErrEmptyValue {
		t.Fatalf("expected ErrEmptyValue, got %v", err)
	}
}
