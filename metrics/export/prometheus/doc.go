// Package prometheus exposes goGate engine counters to Prometheus.
//
// [PrometheusExporter] implements prometheus.Collector over
// [goGate.Engine.MetricsSnapshot]. Counter names are prefixed gogate_*_total;
// the session check histogram is gogate_session_check_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers register the
//     collector themselves or mount [PrometheusExporter.Handler].
//   - Mutate engine state.
package prometheus
