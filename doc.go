// Package goGate provides route access control for a role-scoped web front
// end: it classifies each page request, resolves the visitor's session against
// an external auth service and decides whether to pass the request through or
// redirect it.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Every request is evaluated independently; sessions are
// never cached between requests.
//
// # Decision table
//
// Rows are evaluated top to bottom, first match wins:
//
//	any session   public        allow
//	no session    auth-only     allow
//	no session    intranet/other redirect to login with callbackUrl
//	session       auth-only     redirect to own dashboard
//	session       intranet(p)   allow iff p is the session role's prefix, else own dashboard
//	session       other         allow
//
// Any failure to confirm a session (timeout, transport error, non-2xx,
// malformed body, unknown role) counts as no session.
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Engine], [Builder], [Config],
// [RoleTable], [Classifier], [Decide] and value types. Session transport
// lives in session/, token verification in jwt/, and rate limiting, audit
// dispatch and counters under internal/.
//
// # What this package must NOT do
//
//   - Cache sessions across requests.
//   - Surface auth service errors to the visitor as anything but a login redirect.
//   - Perform I/O outside of [Engine.Evaluate] (construction via Builder is
//     allocation-only until Build).
package goGate
