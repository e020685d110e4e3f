// Package rate bounds how many session checks one client may trigger against
// the auth backend, using Redis fixed-window counters.
//
// # Window semantics
//
// INCR + conditional EXPIRE on the first hit of a window. Keys are
// "{prefix}:sc:{client}". The limiter stores counts only, never sessions.
//
// # What this package must NOT do
//
//   - Cache session results.
//   - Be imported outside the goGate module.
package rate
