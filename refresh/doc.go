// Package refresh generates the opaque rotating refresh tokens handed out at
// login and on every successful rotation.
//
// # Token format
//
// A token is 48 bytes from crypto/rand, standard base64 encoded. It carries no
// structure and is never parsed: the only thing ever done with it is taking its
// [Fingerprint], which travels inside the encrypted rotation envelope.
//
// # Architecture boundaries
//
// This package owns token generation and fingerprinting. Encryption of the
// chain state lives in envelope; slow-hash storage lives in password; the
// rotation state machine lives in the Engine.
//
// # What this package must NOT do
//
//   - Access Redis or any I/O.
//   - Import goRotate, envelope, or session.
//   - Implement rotation or revocation logic.
package refresh
