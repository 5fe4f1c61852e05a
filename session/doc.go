// Package session persists refresh-session records in a TTL-keyed store and
// defines the record lifecycle state machine.
//
// # Record layout
//
// In Redis each record is one hash at <prefix><rsid> whose field names are
// stable on the wire: rsid, userId, hashedRefreshToken, hashedAccessToken,
// iv, createdAt, expiresAt, expiresIn, isRevoked, revokedAt, isLoggedOut and
// loggedOutAt. Timestamps are Unix seconds, booleans are "true"/"false" and
// unset timestamps are empty strings.
//
// The key TTL equals the refresh lifetime. [Store.Mutate] never refreshes
// it, so a revoked or logged-out record disappears when the original
// session would have.
//
// # Architecture boundaries
//
// This package owns the [Store] backends ([RedisStore], [BoltStore]), the
// [Record] model and the [State] transition table. It does NOT decrypt
// envelopes or compare hashes; the rotation flows do.
//
// # What this package must NOT do
//
//   - Import goRotate, jwt, envelope, or permission.
//   - Extend a record's TTL after it was written.
//   - Store plaintext refresh tokens.
package session
