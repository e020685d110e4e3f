// Package otel binds goGate engine counters to OpenTelemetry metrics.
//
// [NewOTelExporter] registers a small set of observable instruments whose
// series are selected by one attribute each:
//
//   - gogate.decisions{decision}: allow, bypass, redirect_login, redirect_dashboard
//   - gogate.session.checks{outcome}: resolved, anonymous, failure, unknown_role,
//     budget_exceeded, budget_error
//   - gogate.redirects.diverted{reason}: role_mismatch, auth_route_bounce
//   - gogate.session.check.latency.buckets{le} and .count
//   - gogate.audit.dropped
//
// A single callback reads [goGate.Engine.MetricsSnapshot] on each collection
// cycle. Nothing is observed while engine metrics are disabled.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
