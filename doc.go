// Package goRotate issues and rotates refresh sessions for already
// authenticated users.
//
// Every session is a record keyed by an opaque rsid. The client holds the
// rsid and an encrypted envelope; the record holds the envelope's IV and a
// slow hash of the chain's root fingerprint. A Refresh validates the
// envelope against the record and spawns a child session whose envelope
// still points at the root, so every descendant verifies against the same
// stored hash. Archive and Logout retire a session after the same checks.
//
// # Architecture boundaries
//
// goRotate is the public surface: [Engine], [Builder], [Config] and value
// types. Flow orchestration lives in internal/flows; session persistence in
// session/; envelope crypto in envelope/; claims in jwt/ and permission/.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build]. Two concurrent Refresh calls on one rsid both succeed
// and produce two children; no lock serializes them.
package goRotate
