// Package jwt mints and verifies the short-lived access tokens handed out
// on login and on every refresh rotation.
//
// Tokens carry userId, schemaVersion, isAdmin, role names, permission codes
// and an optional parentContextId. HS256 with a shared secret is the
// default; Ed25519 with kid-based key sets is also supported.
package jwt
