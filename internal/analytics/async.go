package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Async delivery defaults.
const (
	DefaultQueueSize       = 256
	DefaultDeliveryTimeout = 10 * time.Second
)

// ErrQueueFull is returned by AsyncSink.Record when the buffer is full. The
// event is dropped.
var ErrQueueFull = eris.New("analytics: event queue full")

// ErrClosed is returned by AsyncSink.Record after Close.
var ErrClosed = eris.New("analytics: sink closed")

type queued struct {
	ctx context.Context
	ev  Event
}

// AsyncSink hands events to a background worker so Record never waits on
// the wrapped sink. Each delivery runs detached from the caller's
// cancellation under its own timeout. Delivery failures and panics are
// counted and logged by the worker.
type AsyncSink struct {
	next    Sink
	timeout time.Duration
	queue   chan queued
	pending sync.WaitGroup
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts a worker draining a queue of size buffer into next.
// Non-positive arguments fall back to the defaults.
func NewAsync(next Sink, buffer int, timeout time.Duration) *AsyncSink {
	if buffer <= 0 {
		buffer = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	s := &AsyncSink{
		next:    next,
		timeout: timeout,
		queue:   make(chan queued, buffer),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues ev without blocking.
func (s *AsyncSink) Record(ctx context.Context, ev Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	s.pending.Add(1)
	select {
	case s.queue <- queued{ctx: context.WithoutCancel(ctx), ev: ev}:
		return nil
	default:
		s.pending.Done()
		return ErrQueueFull
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for q := range s.queue {
		s.deliver(q)
		s.pending.Done()
	}
}

func (s *AsyncSink) deliver(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, s.timeout)
	defer cancel()
	record(ctx, s.next, q.ev)
}

// Flush waits until every event accepted so far has been delivered or has
// failed.
func (s *AsyncSink) Flush() {
	s.pending.Wait()
}

// Close stops accepting events, drains the queue and waits for the worker.
// It is safe to call more than once.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}
