// Package internal holds helpers that are private to goGate.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - metrics: lock-free counters and latency histograms
//   - rate: Redis-backed session check budget
//
// # What this package must NOT do
//
//   - Export types that appear in the public goGate API except through aliases.
//   - Be imported by any package outside the goGate module.
package internal
