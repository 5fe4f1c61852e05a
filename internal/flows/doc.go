// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunRefresh, RunArchive, RunLogout,
// RunValidate) accepts a typed dependency struct and returns a result that
// carries either the success payload or a classified failure kind. The root
// package maps failure kinds onto its public error taxonomy.
//
// # Architecture boundaries
//
// Flow functions coordinate the session store, envelope cipher, slow
// hasher, claims builder and jwt manager. They do NOT own any of these
// resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goRotate (to avoid import cycles).
//   - Serialize concurrent calls for the same rsid.
package flows
