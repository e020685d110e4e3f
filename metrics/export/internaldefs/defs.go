package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram for exporters.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricDecisionAllow, Name: "gogate_decision_allow_total", Help: "Requests passed through to the page."},
	{ID: goGate.MetricDecisionBypass, Name: "gogate_decision_bypass_total", Help: "Requests outside interception (assets, API proxy)."},
	{ID: goGate.MetricDecisionRedirectLogin, Name: "gogate_decision_redirect_login_total", Help: "Redirects to the login page."},
	{ID: goGate.MetricDecisionRedirectDashboard, Name: "gogate_decision_redirect_dashboard_total", Help: "Redirects to the session's own dashboard."},
	{ID: goGate.MetricRoleMismatch, Name: "gogate_role_mismatch_total", Help: "Sessions that requested another role's intranet subtree."},
	{ID: goGate.MetricAuthRouteBounce, Name: "gogate_auth_route_bounce_total", Help: "Sessions redirected away from login, register or forgot-password."},
	{ID: goGate.MetricSessionResolved, Name: "gogate_session_resolved_total", Help: "Session checks that confirmed an identity."},
	{ID: goGate.MetricSessionAnonymous, Name: "gogate_session_anonymous_total", Help: "Session checks without credentials or answered 401/403."},
	{ID: goGate.MetricSessionCheckFailure, Name: "gogate_session_check_failure_total", Help: "Session checks that failed and were treated as anonymous."},
	{ID: goGate.MetricSessionUnknownRole, Name: "gogate_session_unknown_role_total", Help: "Sessions rejected for a role outside the enumeration."},
	{ID: goGate.MetricSessionBudgetExceeded, Name: "gogate_session_budget_exceeded_total", Help: "Session checks refused by the per-client budget."},
	{ID: goGate.MetricSessionBudgetError, Name: "gogate_session_budget_error_total", Help: "Session budget lookups that failed against Redis."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricResolveLatency, Name: "gogate_session_check_latency_seconds", Help: "Session check latency histogram."},
}

// AuditDroppedName and AuditDroppedHelp describe the audit backpressure counter.
const (
	AuditDroppedName = "gogate_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// engine bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into a fixed eight-bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
