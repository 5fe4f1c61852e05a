// Package envelope implements the authenticated encryption of the rotation
// chain state that clients carry as their refresh token.
//
// # Wire format
//
// A sealed chain travels as base64(ciphertext) + "." + base64(authTag). The
// 12-byte GCM nonce (IV) is never part of the wire value: it is persisted in
// the session record and looked up by rsid before decryption is attempted.
//
// # Key handling
//
// The AES-256 key lives in a memguard enclave and is only unsealed for the
// duration of a single Encrypt or Decrypt call.
//
// # What this package must NOT do
//
//   - Derive IVs from counters or any other deterministic source.
//   - Return partially decrypted plaintext on authentication failure.
//   - Access the session store.
package envelope
