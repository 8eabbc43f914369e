package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/presentation/graph"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/registry"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/session"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/validator"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

// Version is the library version, stamped into the CLI.
const Version = "0.3.0"

// Session is one visitor's live session handle.
type Session = session.Store

// Engine is the high-level entry point for the funnel library. It owns the
// scene registry, hands out session stores and fans their side effects out
// to the configured adapters.
type Engine struct {
	reg    *registry.Registry
	source ports.ContentSource
	disp   *session.Dispatcher
	hooks  domain.LifecycleHooks
	locker ports.Locker
	logger *slog.Logger
	clock  func() time.Time

	snapshots ports.SnapshotStore

	mu       sync.Mutex
	sessions map[string]*Session

	dispatcherOpts []session.DispatcherOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSnapshotStore wires durable session snapshots. Without one, sessions
// live only in memory and cannot be resumed.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.snapshots = store
		e.dispatcherOpts = append(e.dispatcherOpts, session.WithSnapshotStore(store))
	}
}

// WithRecordWriter adds a remote record writer. May be given more than once.
func WithRecordWriter(w ports.RecordWriter) Option {
	return func(e *Engine) {
		e.dispatcherOpts = append(e.dispatcherOpts, session.WithRecordWriter(w))
	}
}

// WithCollector adds an analytics collector. May be given more than once.
func WithCollector(c ports.Collector) Option {
	return func(e *Engine) {
		e.dispatcherOpts = append(e.dispatcherOpts, session.WithCollector(c))
	}
}

// WithLifecycleHooks registers observability hooks fired on session
// mutations.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLocker wires a distributed session locker for multi-replica hosts.
func WithLocker(l ports.Locker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithFailureCallback registers a counter hook invoked whenever a background
// persistence or sync call fails.
func WithFailureCallback(fn func(kind string)) Option {
	return func(e *Engine) {
		e.dispatcherOpts = append(e.dispatcherOpts, session.WithFailureCallback(fn))
	}
}

// New initializes an Engine from a content source. The content is loaded
// and validated once; a fatally malformed document fails construction.
func New(ctx context.Context, source ports.ContentSource, opts ...Option) (*Engine, error) {
	e := &Engine{
		source:   source,
		logger:   logging.NewNop(),
		clock:    time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(e)
	}

	reg, err := registry.Load(ctx, source, registry.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	e.reg = reg

	e.dispatcherOpts = append(e.dispatcherOpts, session.WithDispatchLogger(e.logger))
	e.disp = session.NewDispatcher(e.dispatcherOpts...)
	return e, nil
}

// Open initializes an Engine from a YAML funnel file.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	return New(ctx, registry.NewFileSource(path), opts...)
}

// NewFromContent initializes an Engine from an in-memory content document.
func NewFromContent(content *domain.Content, opts ...Option) (*Engine, error) {
	return New(context.Background(), registry.NewStaticSource(content), opts...)
}

// Registry exposes the loaded scene registry.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// Scene looks up one scene definition.
func (e *Engine) Scene(id string) (domain.SceneDefinition, error) {
	return e.reg.GetScene(id)
}

// Scenes returns every scene definition in declaration order.
func (e *Engine) Scenes() []domain.SceneDefinition {
	ids := e.reg.ListScenes()
	scenes := make([]domain.SceneDefinition, 0, len(ids))
	for _, id := range ids {
		if scene, err := e.reg.GetScene(id); err == nil {
			scenes = append(scenes, scene)
		}
	}
	return scenes
}

// Graph renders the scene graph as Mermaid flowchart syntax. A non-nil
// overlay highlights one session's progress.
func (e *Engine) Graph(overlay *graph.Overlay) string {
	return graph.GenerateMermaid(e.Scenes(), overlay)
}

// Validate checks the scene graph for dangling references and unreachable
// scenes.
func (e *Engine) Validate() *validator.Report {
	return validator.ValidateGraph(e.reg)
}

// Locker returns the configured distributed locker, or nil.
func (e *Engine) Locker() ports.Locker {
	return e.locker
}

// NewSession creates a fresh session positioned at the entry scene. An
// empty ID gets a generated UUID. The session is retained until Release.
func (e *Engine) NewSession(sessionID string) *Session {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s := session.New(e.reg, sessionID, e.storeOptions()...)

	e.mu.Lock()
	e.sessions[sessionID] = s
	e.mu.Unlock()
	return s
}

// Session returns a live session by ID.
func (e *Engine) Session(sessionID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

// ResumeSession returns the live session if present, otherwise rehydrates
// it from the snapshot store. A missing or unreadable snapshot yields a
// fresh session rather than an error; losing a save never locks a visitor
// out.
func (e *Engine) ResumeSession(ctx context.Context, sessionID string) *Session {
	if sessionID == "" {
		return e.NewSession("")
	}
	if s, ok := e.Session(sessionID); ok {
		return s
	}
	if e.snapshots == nil {
		return e.NewSession(sessionID)
	}

	snap, err := e.snapshots.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			e.logger.Warn("failed to load snapshot, starting fresh", "sessionId", sessionID, "err", err)
		}
		return e.NewSession(sessionID)
	}

	s := session.Restore(e.reg, snap, e.storeOptions()...)
	e.mu.Lock()
	e.sessions[sessionID] = s
	e.mu.Unlock()
	return s
}

// Release drops the live session handle. The durable snapshot, if any,
// stays behind for a later resume.
func (e *Engine) Release(sessionID string) {
	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
}

// DeleteSession drops the live handle and the durable snapshot.
func (e *Engine) DeleteSession(ctx context.Context, sessionID string) error {
	e.Release(sessionID)
	if e.snapshots == nil {
		return nil
	}
	return e.snapshots.Delete(ctx, sessionID)
}

// Watch returns a channel that signals when the underlying content changes.
// Returns an error if the source does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current content source does not support watching")
}

// Close drains in-flight background work. Call at shutdown.
func (e *Engine) Close() {
	e.disp.Wait()
}

func (e *Engine) storeOptions() []session.StoreOption {
	return []session.StoreOption{
		session.WithDispatcher(e.disp),
		session.WithHooks(e.hooks),
		session.WithLogger(e.logger),
		session.WithClock(e.clock),
	}
}
