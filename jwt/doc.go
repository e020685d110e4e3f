// Package jwt verifies session cookies that the backend issues as signed JWTs,
// so the guard can resolve a session without calling the auth service.
//
// Only HS256 and Ed25519 are accepted; the algorithm is pinned per [Manager]
// and tokens without an expiry are rejected.
package jwt
