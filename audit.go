package goRotate

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goRotate/internal/audit"
)

// AuditEvent is a structured lifecycle record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON event per line.
type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// LoginRecord is the login-history entry handed to a [LoginRecorder].
type LoginRecord struct {
	EventID   string
	UserID    string
	RSID      string
	ContextID string
	IP        string
	UserAgent string
	At        time.Time
}

// LoginRecorder persists login history. It runs on the audit dispatcher
// goroutine; errors are logged and never reach the caller of Login.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, rec LoginRecord) error
}

// loginHistorySink adapts a LoginRecorder to the dispatcher.
type loginHistorySink struct {
	recorder LoginRecorder
	warn     func(string, ...any)
}

func (s loginHistorySink) Emit(ctx context.Context, ev AuditEvent) {
	if ev.EventType != auditEventLoginSuccess || s.recorder == nil {
		return
	}
	rec := LoginRecord{
		EventID:   ev.ID,
		UserID:    ev.UserID,
		RSID:      ev.RSID,
		ContextID: ev.Metadata["context_id"],
		IP:        ev.IP,
		UserAgent: ev.UserAgent,
		At:        ev.Timestamp,
	}
	if err := s.recorder.RecordLogin(ctx, rec); err != nil {
		s.warn("gorotate: login history write failed", "user_id", ev.UserID, "rsid", ev.RSID, "error", err)
	}
}
