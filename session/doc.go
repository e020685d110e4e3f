// Package session resolves the identity behind a request's cookies.
//
// # Resolvers
//
//   - [HTTPResolver]: calls the backend "who am I" endpoint, forwarding the
//     Cookie header verbatim.
//   - [JWTResolver]: verifies a signed session cookie locally, no network call.
//
// Every failure is reported as an error; callers decide how to degrade. A
// resolver never caches: each call reflects the current cookie and backend
// state.
//
// # Architecture boundaries
//
// This package owns the wire [Session] record. It does NOT parse roles into
// the closed enumeration or make access decisions; both belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goGate (no upward imports).
//   - Retry a failed session check.
//   - Log cookie values.
package session
