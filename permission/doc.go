// Package permission resolves the roles and permission codes embedded in
// access-token claims.
//
// # Components
//
//   - [Source]: source of truth for a user's roles and permissions
//     ([StaticSource] in memory, [PostgresSource] over pgx).
//   - [Cache]: bounded, TTL-based, process-local snapshot cache. When full,
//     inserting a new user evicts the entry with the smallest expiry,
//     regardless of how recently it was read.
//   - [Resolver]: cache-first lookup with an explicit bypass.
//
// # Architecture boundaries
//
// The cache is an optimisation layer and never a source of truth. Callers
// own its lifecycle: construct it once, inject it, and [Cache.Close] it on
// shutdown.
//
// # What this package must NOT do
//
//   - Sign or parse tokens.
//   - Import goRotate, jwt, or session.
package permission
