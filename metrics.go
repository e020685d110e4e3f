package goGate

import (
	"time"

	internalmetrics "github.com/MrEthical07/goGate/internal/metrics"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricDecisionAllow counts requests passed through.
	MetricDecisionAllow MetricID = iota
	// MetricDecisionBypass counts requests never intercepted.
	MetricDecisionBypass
	// MetricDecisionRedirectLogin counts redirects to the login page.
	MetricDecisionRedirectLogin
	// MetricDecisionRedirectDashboard counts redirects to a role dashboard.
	MetricDecisionRedirectDashboard
	// MetricRoleMismatch counts sessions that requested another role's subtree.
	MetricRoleMismatch
	// MetricAuthRouteBounce counts sessions redirected away from auth-only pages.
	MetricAuthRouteBounce
	// MetricSessionResolved counts session checks that confirmed an identity.
	MetricSessionResolved
	// MetricSessionAnonymous counts checks that found no credentials or a 401/403.
	MetricSessionAnonymous
	// MetricSessionCheckFailure counts checks that failed (timeout, transport, 5xx, bad body).
	MetricSessionCheckFailure
	// MetricSessionUnknownRole counts sessions rejected for a role outside the enumeration.
	MetricSessionUnknownRole
	// MetricSessionBudgetExceeded counts checks skipped by the per-client budget.
	MetricSessionBudgetExceeded
	// MetricSessionBudgetError counts limiter errors (the check still proceeds).
	MetricSessionBudgetError
	// MetricResolveLatency is the session check latency histogram.
	MetricResolveLatency
	metricIDCount
)

// Metrics is the engine's counter set. Safe for concurrent use.
type Metrics struct {
	set *internalmetrics.Set
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds a counter set from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		set: internalmetrics.New(int(metricIDCount), cfg.Enabled, cfg.EnableLatencyHistograms, int(MetricResolveLatency)),
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.set.Enabled()
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.set.LatencyEnabled()
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	m.set.Inc(int(id))
}

// Observe records d for a latency metric.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || id >= metricIDCount {
		return
	}
	m.set.Observe(int(id), d)
}

// Value returns the current counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.set.Value(int(id))
}

// Snapshot copies all counters. It is empty when metrics are disabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil {
		return out
	}
	raw := m.set.Snapshot()
	for id, v := range raw.Counters {
		out.Counters[MetricID(id)] = v
	}
	for id, b := range raw.Histograms {
		out.Histograms[MetricID(id)] = b
	}
	return out
}

func decisionMetric(k DecisionKind) MetricID {
	switch k {
	case DecisionAllow:
		return MetricDecisionAllow
	case DecisionRedirectLogin:
		return MetricDecisionRedirectLogin
	case DecisionRedirectDashboard:
		return MetricDecisionRedirectDashboard
	default:
		return MetricDecisionBypass
	}
}
