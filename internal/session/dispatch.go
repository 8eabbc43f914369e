package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

// Dispatcher fans session side effects out to the snapshot store, remote
// record writers and analytics collectors.
//
// Every dispatch is fire-and-forget: the mutation path never waits on I/O
// and never sees an error. Failures are caught at the call site, logged and
// counted; a panicking adapter cannot take the session down. Dispatches for
// the same session run in emission order on a per-session queue, so a slow
// earlier save can never overwrite a later one; sessions do not block each
// other. Wait exists so hosts can drain in-flight work at shutdown and tests
// can observe effects.
type Dispatcher struct {
	snapshots  ports.SnapshotStore
	writers    []ports.RecordWriter
	collectors []ports.Collector
	logger     *slog.Logger
	timeout    time.Duration
	onFailure  func(kind string)

	mu     sync.Mutex
	queues map[string]*sessionQueue
	wg     sync.WaitGroup
}

type dispatchJob struct {
	kind string
	fn   func(ctx context.Context) error
}

// sessionQueue holds one session's pending dispatches. A single drain
// goroutine owns the queue while running is set.
type sessionQueue struct {
	jobs    []dispatchJob
	running bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSnapshotStore sets the durable snapshot destination.
func WithSnapshotStore(store ports.SnapshotStore) DispatcherOption {
	return func(d *Dispatcher) {
		d.snapshots = store
	}
}

// WithRecordWriter adds a remote record writer.
func WithRecordWriter(w ports.RecordWriter) DispatcherOption {
	return func(d *Dispatcher) {
		if w != nil {
			d.writers = append(d.writers, w)
		}
	}
}

// WithCollector adds an analytics collector.
func WithCollector(c ports.Collector) DispatcherOption {
	return func(d *Dispatcher) {
		if c != nil {
			d.collectors = append(d.collectors, c)
		}
	}
}

// WithDispatchLogger sets the logger for swallowed failures.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDispatchTimeout bounds each outbound call. Default 10s.
func WithDispatchTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithFailureCallback registers a counter hook invoked with "snapshot",
// "sync" or "analytics" whenever a dispatch fails.
func WithFailureCallback(fn func(kind string)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onFailure = fn
	}
}

// NewDispatcher creates a dispatcher. With no options it is a no-op sink.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger:  logging.NewNop(),
		timeout: 10 * time.Second,
		queues:  make(map[string]*sessionQueue),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Snapshot persists the durable snapshot. Snapshots for one session apply in
// emission order, so the newest state always ends up in the store's slot.
func (d *Dispatcher) Snapshot(sessionID string, snap *domain.Snapshot) {
	if d.snapshots == nil {
		return
	}
	d.dispatch("snapshot", sessionID, func(ctx context.Context) error {
		return d.snapshots.Save(ctx, sessionID, snap)
	})
}

// Write mirrors a record to every remote writer, in emission order per
// session.
func (d *Dispatcher) Write(sessionID string, table domain.Table, record any) {
	for _, w := range d.writers {
		writer := w
		d.dispatch("sync", sessionID, func(ctx context.Context) error {
			return writer.Write(ctx, table, record)
		})
	}
}

// Emit forwards an analytics event to every collector.
func (d *Dispatcher) Emit(event domain.Event) {
	for _, c := range d.collectors {
		collector := c
		d.dispatch("analytics", event.SessionID, func(ctx context.Context) error {
			return collector.Collect(ctx, event)
		})
	}
}

// Wait blocks until all in-flight dispatches finish. Used at shutdown and
// in tests; gameplay never calls it.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// dispatch queues fn behind the session's earlier dispatches. An empty
// session ID runs immediately with no ordering guarantee.
func (d *Dispatcher) dispatch(kind, sessionID string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	job := dispatchJob{kind: kind, fn: fn}

	if sessionID == "" {
		go d.run(job)
		return
	}

	d.mu.Lock()
	q, ok := d.queues[sessionID]
	if !ok {
		q = &sessionQueue{}
		d.queues[sessionID] = q
	}
	q.jobs = append(q.jobs, job)
	if q.running {
		d.mu.Unlock()
		return
	}
	q.running = true
	d.mu.Unlock()

	go d.drain(sessionID, q)
}

// drain executes the session's queue until it is empty, then retires it.
func (d *Dispatcher) drain(sessionID string, q *sessionQueue) {
	for {
		d.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			delete(d.queues, sessionID)
			d.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		d.mu.Unlock()

		d.run(job)
	}
}

func (d *Dispatcher) run(job dispatchJob) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked", "kind", job.kind, "panic", r)
			d.fail(job.kind)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := job.fn(ctx); err != nil {
		d.logger.Warn("dispatch failed", "kind", job.kind, "err", err)
		d.fail(job.kind)
	}
}

func (d *Dispatcher) fail(kind string) {
	if d.onFailure != nil {
		d.onFailure(kind)
	}
}
