// Package analytics records intake events to a pluggable sink. Emission is
// fire-and-forget: failures are logged and counted, never returned to the
// request path. Wrap slow sinks in an AsyncSink to keep delivery off it too.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/smart-intake/internal/monitoring"
)

// Event names emitted by the intake engine.
const (
	EventContextDerived      = "intake_context_derived"
	EventQuestionsSuppressed = "intake_questions_suppressed"
)

// Event is one analytics record as delivered to a sink.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewEvent stamps name and props with a fresh id and the current time.
func NewEvent(name string, props map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		Properties: props,
		Timestamp:  time.Now().UTC(),
	}
}

// Sink delivers events somewhere.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// NopSink discards every event.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(context.Context, Event) error { return nil }

// LogSink writes events to the global zap logger.
type LogSink struct{}

// Record implements Sink.
func (LogSink) Record(_ context.Context, ev Event) error {
	zap.L().Info("analytics: event",
		zap.String("event_id", ev.ID),
		zap.String("event", ev.Name),
		zap.Any("properties", ev.Properties),
	)
	return nil
}

// Emit records an event on sink and swallows every failure, including panics
// inside the sink.
func Emit(ctx context.Context, sink Sink, name string, props map[string]any) {
	if sink == nil {
		return
	}
	record(ctx, sink, NewEvent(name, props))
}

func record(ctx context.Context, sink Sink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			fail(ev, eris.New(fmt.Sprintf("analytics: sink panic: %v", r)))
		}
	}()
	if err := sink.Record(ctx, ev); err != nil {
		fail(ev, err)
	}
}

func fail(ev Event, err error) {
	monitoring.AnalyticsFailures.WithLabelValues(ev.Name).Inc()
	zap.L().Warn("analytics: emit failed",
		zap.String("event", ev.Name),
		zap.String("event_id", ev.ID),
		zap.Error(err),
	)
}
