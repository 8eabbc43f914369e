package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/analytics"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

type recordingCollector struct {
	mu     sync.Mutex
	events []domain.Event
	block  chan struct{}
}

func (r *recordingCollector) Collect(_ context.Context, event domain.Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingCollector) collected() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

type failingCollector struct{}

func (failingCollector) Collect(context.Context, domain.Event) error {
	return errors.New("sink offline")
}

func TestEmitter_DeliversInOrder(t *testing.T) {
	sink := &recordingCollector{}
	emitter := analytics.New([]ports.Collector{sink})

	ctx := context.Background()
	for _, typ := range []domain.EventType{domain.EventSessionStarted, domain.EventSceneView, domain.EventChoiceMade} {
		require.NoError(t, emitter.Collect(ctx, domain.Event{Type: typ, SessionID: "s-1", Timestamp: time.Now()}))
	}
	emitter.Close()

	events := sink.collected()
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventSessionStarted, events[0].Type)
	assert.Equal(t, domain.EventSceneView, events[1].Type)
	assert.Equal(t, domain.EventChoiceMade, events[2].Type)
}

func TestEmitter_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	release := make(chan struct{})
	sink := &recordingCollector{block: release}
	emitter := analytics.New([]ports.Collector{sink}, analytics.WithQueueSize(1))

	ctx := context.Background()
	// First event occupies the worker, second fills the queue; everything
	// after that must drop without delay.
	for i := 0; i < 5; i++ {
		require.NoError(t, emitter.Collect(ctx, domain.Event{Type: domain.EventSceneView, SessionID: "s-1"}))
	}
	assert.Positive(t, emitter.Dropped())

	close(release)
	emitter.Close()
}

func TestEmitter_FailingCollectorDoesNotStopDelivery(t *testing.T) {
	sink := &recordingCollector{}
	emitter := analytics.New([]ports.Collector{failingCollector{}, sink})

	require.NoError(t, emitter.Collect(context.Background(), domain.Event{Type: domain.EventGameCompleted, SessionID: "s-1"}))
	emitter.Close()

	assert.Len(t, sink.collected(), 1)
}

func TestEmitter_CloseIsIdempotent(t *testing.T) {
	emitter := analytics.New(nil)
	emitter.Close()
	emitter.Close()
}

func TestEmitter_CollectAfterCloseDropsSafely(t *testing.T) {
	sink := &recordingCollector{}
	emitter := analytics.New([]ports.Collector{sink})
	emitter.Close()

	require.NoError(t, emitter.Collect(context.Background(), domain.Event{Type: domain.EventSceneView, SessionID: "s-1"}))

	assert.Empty(t, sink.collected())
	assert.Equal(t, 1, emitter.Dropped())
}
