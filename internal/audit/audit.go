// Package audit defines the audit sink collaborator and a slog-backed
// implementation used by the orchestrator to trace configuration outcomes.
package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Severity grades an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one auditable action with its outcome.
type Event struct {
	Actor      string
	Action     string
	Payload    string
	Message    string
	Severity   Severity
	StatusCode int
}

// Sink receives audit events. Implementations must not block the caller on
// downstream failures.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Slog writes audit events through a structured logger.
type Slog struct {
	log *slog.Logger
}

// NewSlog constructs a Sink over the given logger.
func NewSlog(log *slog.Logger) *Slog { return &Slog{log: log} }

// Record logs the event at the level matching its severity.
func (s *Slog) Record(ctx context.Context, e Event) {
	attrs := []any{
		"actor", e.Actor,
		"action", e.Action,
		"status", e.StatusCode,
		"payload", e.Payload,
	}
	switch e.Severity {
	case SeverityError:
		s.log.ErrorContext(ctx, e.Message, attrs...)
	case SeverityWarning:
		s.log.WarnContext(ctx, e.Message, attrs...)
	default:
		s.log.InfoContext(ctx, e.Message, attrs...)
	}
}

// Memory collects events for assertions in tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory constructs an empty in-memory sink.
func NewMemory() *Memory { return &Memory{} }

// Record appends the event.
func (m *Memory) Record(_ context.Context, e Event) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// Events returns a copy of recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
