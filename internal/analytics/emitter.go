// Package analytics fans session events out to downstream collectors through
// a bounded queue. Emission never blocks gameplay: when the queue is full
// the event is dropped and logged at debug level.
package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

const defaultQueueSize = 256

// Emitter implements ports.Collector. A single worker drains the queue and
// delivers each event to every downstream collector in order.
type Emitter struct {
	queue      chan domain.Event
	collectors []ports.Collector
	logger     *slog.Logger

	closeOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int
}

// Option configures the Emitter.
type Option func(*Emitter)

// WithQueueSize overrides the queue capacity (default 256).
func WithQueueSize(n int) Option {
	return func(e *Emitter) {
		if n > 0 {
			e.queue = make(chan domain.Event, n)
		}
	}
}

// WithLogger sets the logger (default no-op).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Emitter delivering to the given collectors and starts its
// worker.
func New(collectors []ports.Collector, opts ...Option) *Emitter {
	e := &Emitter{
		queue:      make(chan domain.Event, defaultQueueSize),
		collectors: collectors,
		logger:     logging.NewNop(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	go e.run()
	return e
}

func (e *Emitter) run() {
	defer close(e.done)
	for event := range e.queue {
		for _, c := range e.collectors {
			if err := c.Collect(context.Background(), event); err != nil {
				e.logger.Warn("collector rejected event",
					"eventType", event.Type,
					"sessionId", event.SessionID,
					"err", err,
				)
			}
		}
	}
}

// Collect enqueues the event. A full queue drops the event rather than
// stall the caller, and collecting after Close drops it too. The send
// happens under the mutex so Close cannot close the queue mid-send.
func (e *Emitter) Collect(_ context.Context, event domain.Event) error {
	e.mu.Lock()
	if e.closed {
		e.dropped++
		e.mu.Unlock()
		e.logger.Debug("emitter closed, dropping event",
			"eventType", event.Type,
			"sessionId", event.SessionID,
		)
		return nil
	}
	select {
	case e.queue <- event:
		e.mu.Unlock()
	default:
		e.dropped++
		e.mu.Unlock()
		e.logger.Debug("analytics queue full, dropping event",
			"eventType", event.Type,
			"sessionId", event.SessionID,
		)
	}
	return nil
}

// Dropped returns how many events were discarded due to a full queue.
func (e *Emitter) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Close stops accepting events and waits for the queue to drain.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.queue)
	})
	<-e.done
}
