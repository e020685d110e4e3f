package goGate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/session"
)

// Engine evaluates page requests against the access table.
//
// Engine instances are configured once through [Builder] and then treated as
// immutable. All methods are safe for concurrent use.
type Engine struct {
	config     Config
	roles      *RoleTable
	classifier *Classifier
	resolver   session.Resolver
	limiter    *rate.Limiter
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	logger     *slog.Logger
}

// Evaluation is the full outcome of [Engine.Evaluate].
//
// Session is nil for anonymous visitors and for every failed check.
// SessionErr records why a check did not produce a session; it is
// informational only and never changes Decision beyond treating the
// visitor as anonymous.
type Evaluation struct {
	Route      Classification
	Decision   Decision
	Session    *Session
	SessionErr error
}

// Close describes the close operation and its observable behavior.
//
// Close flushes buffered audit events. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot returns empty maps when metrics are disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// RoleTable returns the role -> prefix table in use.
func (e *Engine) RoleTable() *RoleTable {
	return e.roles
}

// Classify returns the route category of path p.
func (e *Engine) Classify(p string) Classification {
	return e.classifier.Classify(p)
}

// DecidePath applies the access table to path p for session s without any
// I/O. p may carry a query string; it is used verbatim as the callback.
func (e *Engine) DecidePath(p string, s *Session) Decision {
	pathOnly := p
	if i := strings.IndexByte(pathOnly, '?'); i >= 0 {
		pathOnly = pathOnly[:i]
	}
	return Decide(e.roles, e.config.Redirect.LoginPath, s, e.classifier.Classify(pathOnly), p)
}

// RedirectURL renders the Location header value for d. A login redirect
// carries the callback as a single url-encoded query parameter. A dashboard
// redirect carries no query. Non-redirect decisions return "".
func (e *Engine) RedirectURL(d Decision) string {
	switch d.Kind {
	case DecisionRedirectLogin:
		q := url.Values{}
		q.Set(e.config.Redirect.CallbackParam, d.Callback)
		return d.Location + "?" + q.Encode()
	case DecisionRedirectDashboard:
		return d.Location
	default:
		return ""
	}
}

// RedirectStatus is the HTTP status used for redirect responses.
func (e *Engine) RedirectStatus() int {
	return e.config.Redirect.StatusCode
}

// Evaluate classifies r, resolves its session when the route needs one and
// returns the access decision.
//
// Public and bypass routes never trigger a session check. Any failure to
// confirm a session (timeout, transport error, non-2xx, malformed body,
// unknown role, exhausted budget) is treated as no session.
func (e *Engine) Evaluate(r *http.Request) Evaluation {
	ctx := r.Context()
	p := r.URL.Path
	route := e.classifier.Classify(p)
	out := Evaluation{Route: route}

	if route.Kind == RouteBypass || route.Kind == RoutePublic {
		out.Decision = Decide(e.roles, e.config.Redirect.LoginPath, nil, route, "")
		e.metricInc(decisionMetric(out.Decision.Kind))
		return out
	}

	out.Session, out.SessionErr = e.resolve(ctx, r)
	out.Decision = Decide(e.roles, e.config.Redirect.LoginPath, out.Session, route, requestTarget(r))

	e.record(ctx, r, out)
	return out
}

func (e *Engine) resolve(ctx context.Context, r *http.Request) (*Session, error) {
	cookie := strings.Join(r.Header.Values("Cookie"), "; ")
	if strings.TrimSpace(cookie) == "" {
		e.metricInc(MetricSessionAnonymous)
		return nil, session.ErrNoCookie
	}

	if e.limiter != nil {
		err := e.limiter.Allow(ctx, clientIP(r))
		switch {
		case errors.Is(err, rate.ErrRateLimited):
			e.metricInc(MetricSessionBudgetExceeded)
			return nil, ErrSessionBudgetExceeded
		case err != nil:
			e.metricInc(MetricSessionBudgetError)
			e.logger.WarnContext(ctx, "session budget unavailable", "error", err)
		}
	}

	start := time.Now()
	ws, err := e.resolver.Resolve(ctx, cookie)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricResolveLatency, time.Since(start))
	}

	if err != nil {
		var se *session.StatusError
		if errors.Is(err, session.ErrNoCookie) || (errors.As(err, &se) && se.Anonymous()) {
			e.metricInc(MetricSessionAnonymous)
			return nil, err
		}
		e.metricInc(MetricSessionCheckFailure)
		e.logger.WarnContext(ctx, "session check failed", "path", r.URL.Path, "error", err)
		e.emitAudit(ctx, AuditEvent{
			EventType: AuditSessionCheckFailed,
			Path:      r.URL.Path,
			IP:        clientIP(r),
			Error:     err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrSessionCheckFailed, err)
	}

	role, err := ParseRole(ws.Role)
	if err != nil {
		e.metricInc(MetricSessionUnknownRole)
		e.logger.WarnContext(ctx, "session role not recognised", "user_id", ws.ID, "role", ws.Role)
		return nil, err
	}

	e.metricInc(MetricSessionResolved)
	return &Session{
		ID:    ws.ID,
		Email: ws.Email,
		Role:  role,
		Name:  ws.Name,
	}, nil
}

func (e *Engine) record(ctx context.Context, r *http.Request, ev Evaluation) {
	d := ev.Decision
	e.metricInc(decisionMetric(d.Kind))
	if d.Kind == DecisionRedirectDashboard {
		if ev.Route.Kind == RouteAuthOnly {
			e.metricInc(MetricAuthRouteBounce)
		} else {
			e.metricInc(MetricRoleMismatch)
		}
	}

	attrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("route", ev.Route.Kind.String()),
		slog.String("decision", d.Kind.String()),
	}
	event := AuditEvent{
		EventType: auditEventType(d.Kind),
		Path:      r.URL.Path,
		Route:     ev.Route.Kind.String(),
		Decision:  d.Kind.String(),
		Location:  d.Location,
		IP:        clientIP(r),
	}
	if ev.Session != nil {
		attrs = append(attrs, slog.String("user_id", ev.Session.ID), slog.String("role", ev.Session.Role.String()))
		event.UserID = ev.Session.ID
		event.Role = ev.Session.Role.String()
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "access decision", attrs...)
	e.emitAudit(ctx, event)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// requestTarget is the path and raw query exactly as the client sent them.
func requestTarget(r *http.Request) string {
	if strings.HasPrefix(r.RequestURI, "/") {
		return r.RequestURI
	}
	target := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target
}

// RequireSession returns the session attached to ctx by the guard.
func (e *Engine) RequireSession(ctx context.Context) (*Session, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s, nil
}

// RequireRole returns the session attached to ctx when its role is one of
// roles. With no roles any session qualifies.
func (e *Engine) RequireRole(ctx context.Context, roles ...Role) (*Session, error) {
	s, err := e.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return s, nil
	}
	for _, r := range roles {
		if s.Role == r {
			return s, nil
		}
	}
	return nil, ErrForbidden
}

// HasRole reports whether ctx carries a session with one of roles.
func HasRole(ctx context.Context, roles ...Role) bool {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
