// Package password implements the slow hash used to protect the root
// refresh fingerprint stored in every session record.
//
// Two [Hasher] implementations exist:
//
//   - [Bcrypt] (default): golang.org/x/crypto/bcrypt with a configurable cost.
//   - [Argon2]: argon2id encoded in PHC string format
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # Architecture boundaries
//
// This package owns hashing and verification only. What gets hashed (the
// hex fingerprint of a root refresh token) is decided by the rotation flows.
//
// # What this package must NOT do
//
//   - Store or retrieve hashes.
//   - Import any other goRotate package.
//   - Log the values it hashes.
package password
