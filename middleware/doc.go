// Package middleware exposes HTTP adapters around goGate.Engine: the page
// guard that executes access decisions, and handler-level role gates.
//
// # Guards
//
//   - [Guard]: classifies every request, resolves the session when the route
//     needs one and either passes through or redirects.
//   - [RequireSession]: 401 unless the guard attached a session.
//   - [RequireRole]: 401 without a session, 403 for any other role.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Route
// classification, session resolution and the access table all live in
// goGate; the guard only writes the response the Engine decided on.
//
// # What this package must NOT do
//
//   - Call the auth backend directly (the Engine owns the resolver).
//   - Cache sessions between requests.
//   - Modify the request path or query before handing it to the Engine.
package middleware
