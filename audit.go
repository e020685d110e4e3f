package goGate

import (
	"io"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
)

// AuditEvent is one audited access decision.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events in a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a [ChannelSink] with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Audit event types.
const (
	AuditAccessAllow             = "access.allow"
	AuditAccessRedirectLogin     = "access.redirect_login"
	AuditAccessRedirectDashboard = "access.redirect_dashboard"
	AuditSessionCheckFailed      = "session.check_failed"
)

func auditEventType(k DecisionKind) string {
	switch k {
	case DecisionRedirectLogin:
		return AuditAccessRedirectLogin
	case DecisionRedirectDashboard:
		return AuditAccessRedirectDashboard
	default:
		return AuditAccessAllow
	}
}
