package otel

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Instrument names. Each family carries one attribute that selects the series.
const (
	DecisionsName      = "gogate.decisions"
	SessionChecksName  = "gogate.session.checks"
	DivertedName       = "gogate.redirects.diverted"
	LatencyBucketsName = "gogate.session.check.latency.buckets"
	LatencyCountName   = "gogate.session.check.latency.count"
	AuditDroppedName   = "gogate.audit.dropped"
)

// Attribute keys.
const (
	DecisionKey = attribute.Key("decision")
	OutcomeKey  = attribute.Key("outcome")
	ReasonKey   = attribute.Key("reason")
	LeKey       = attribute.Key("le")
)

type metricsSource interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	AuditDropped() uint64
}

// series maps one engine counter onto an attribute of a family.
type series struct {
	id  goGate.MetricID
	opt metric.ObserveOption
}

func seriesOf(key attribute.Key, pairs map[goGate.MetricID]string) []series {
	out := make([]series, 0, len(pairs))
	for _, def := range internaldefs.CounterDefs {
		v, ok := pairs[def.ID]
		if !ok {
			continue
		}
		out = append(out, series{id: def.ID, opt: metric.WithAttributeSet(attribute.NewSet(key.String(v)))})
	}
	return out
}

var (
	decisionSeries = seriesOf(DecisionKey, map[goGate.MetricID]string{
		goGate.MetricDecisionAllow:             goGate.DecisionAllow.String(),
		goGate.MetricDecisionBypass:            goGate.DecisionBypass.String(),
		goGate.MetricDecisionRedirectLogin:     goGate.DecisionRedirectLogin.String(),
		goGate.MetricDecisionRedirectDashboard: goGate.DecisionRedirectDashboard.String(),
	})
	checkSeries = seriesOf(OutcomeKey, map[goGate.MetricID]string{
		goGate.MetricSessionResolved:       "resolved",
		goGate.MetricSessionAnonymous:      "anonymous",
		goGate.MetricSessionCheckFailure:   "failure",
		goGate.MetricSessionUnknownRole:    "unknown_role",
		goGate.MetricSessionBudgetExceeded: "budget_exceeded",
		goGate.MetricSessionBudgetError:    "budget_error",
	})
	divertedSeries = seriesOf(ReasonKey, map[goGate.MetricID]string{
		goGate.MetricRoleMismatch:    "role_mismatch",
		goGate.MetricAuthRouteBounce: "auth_route_bounce",
	})
)

// bucketOptions labels each cumulative latency bucket with its upper bound
// in seconds, the last one "+Inf".
func bucketOptions() []metric.ObserveOption {
	out := make([]metric.ObserveOption, 0, len(internaldefs.HistogramUpperBounds)+1)
	for _, b := range internaldefs.HistogramUpperBounds {
		le := strconv.FormatFloat(b, 'g', -1, 64)
		out = append(out, metric.WithAttributeSet(attribute.NewSet(LeKey.String(le))))
	}
	return append(out, metric.WithAttributeSet(attribute.NewSet(LeKey.String("+Inf"))))
}

// OTelExporter publishes engine counters through observable instruments.
// A single callback reads one snapshot per collection cycle.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	decisions      metric.Int64ObservableCounter
	checks         metric.Int64ObservableCounter
	diverted       metric.Int64ObservableCounter
	latencyBuckets metric.Int64ObservableGauge
	latencyCount   metric.Int64ObservableCounter
	auditDropped   metric.Int64ObservableCounter
	buckets        []metric.ObserveOption
}

// NewOTelExporter registers instruments on meter that read from engine.
func NewOTelExporter(meter metric.Meter, engine *goGate.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource is [NewOTelExporter] over any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source, buckets: bucketOptions()}
	var err error
	counter := func(name, desc, unit string) metric.Int64ObservableCounter {
		if err != nil {
			return nil
		}
		var ins metric.Int64ObservableCounter
		ins, err = meter.Int64ObservableCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			err = fmt.Errorf("create counter %s: %w", name, err)
		}
		return ins
	}

	e.decisions = counter(DecisionsName, "Access decisions by kind.", "{request}")
	e.checks = counter(SessionChecksName, "Session checks by outcome.", "{check}")
	e.diverted = counter(DivertedName, "Dashboard redirects by reason.", "{request}")
	e.latencyCount = counter(LatencyCountName, "Session checks timed by the latency histogram.", "{check}")
	e.auditDropped = counter(AuditDroppedName, internaldefs.AuditDroppedHelp, "{event}")
	if err != nil {
		return nil, err
	}

	e.latencyBuckets, err = meter.Int64ObservableGauge(LatencyBucketsName,
		metric.WithDescription("Cumulative session checks at or under the le bound in seconds."),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create gauge %s: %w", LatencyBucketsName, err)
	}

	e.registration, err = meter.RegisterCallback(e.observe,
		e.decisions, e.checks, e.diverted, e.latencyBuckets, e.latencyCount, e.auditDropped)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 {
		return nil
	}

	for _, s := range decisionSeries {
		o.ObserveInt64(e.decisions, int64(snap.Counters[s.id]), s.opt)
	}
	for _, s := range checkSeries {
		o.ObserveInt64(e.checks, int64(snap.Counters[s.id]), s.opt)
	}
	for _, s := range divertedSeries {
		o.ObserveInt64(e.diverted, int64(snap.Counters[s.id]), s.opt)
	}

	if raw, ok := snap.Histograms[goGate.MetricResolveLatency]; ok {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, opt := range e.buckets {
			o.ObserveInt64(e.latencyBuckets, int64(cumulative[i]), opt)
		}
		o.ObserveInt64(e.latencyCount, int64(cumulative[len(cumulative)-1]))
	}

	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
