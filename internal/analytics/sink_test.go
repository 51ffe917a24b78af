package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smart-intake/internal/monitoring"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Record(ctx context.Context, ev Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type panicSink struct{}

func (panicSink) Record(context.Context, Event) error { panic("boom") }

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventContextDerived, map[string]any{"zone": "cold"})
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventContextDerived, ev.Name)
	assert.False(t, ev.Timestamp.IsZero())
	assert.NotEqual(t, ev.ID, NewEvent(EventContextDerived, nil).ID)
}

func TestEmit_Delivers(t *testing.T) {
	s := new(mockSink)
	s.On("Record", mock.Anything, mock.MatchedBy(func(ev Event) bool {
		return ev.Name == EventQuestionsSuppressed && ev.Properties["count"] == 2
	})).Return(nil).Once()

	Emit(context.Background(), s, EventQuestionsSuppressed, map[string]any{"count": 2})
	s.AssertExpectations(t)
}

func TestEmit_SwallowsError(t *testing.T) {
	s := new(mockSink)
	s.On("Record", mock.Anything, mock.Anything).Return(errors.New("sink down"))

	before := testutil.ToFloat64(monitoring.AnalyticsFailures.WithLabelValues("swallow_error"))
	assert.NotPanics(t, func() {
		Emit(context.Background(), s, "swallow_error", nil)
	})
	after := testutil.ToFloat64(monitoring.AnalyticsFailures.WithLabelValues("swallow_error"))
	assert.InDelta(t, before+1, after, 0.0001)
}

func TestEmit_SwallowsPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), panicSink{}, "swallow_panic", nil)
	})
}

func TestEmit_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, EventContextDerived, nil)
	})
}

func TestNew(t *testing.T) {
	s, err := New(Options{Kind: "log"})
	require.NoError(t, err)
	assert.IsType(t, LogSink{}, s)

	s, err = New(Options{Kind: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = New(Options{Kind: "webhook", WebhookURL: "http://example.invalid"})
	require.NoError(t, err)
	assert.IsType(t, &WebhookSink{}, s)

	_, err = New(Options{Kind: "redis"})
	assert.Error(t, err)
	_, err = New(Options{Kind: "webhook"})
	assert.Error(t, err)
	_, err = New(Options{Kind: "kafka"})
	assert.Error(t, err)
}
