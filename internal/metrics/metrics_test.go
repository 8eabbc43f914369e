package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/metrics"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

func TestMetrics_HooksFeedCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnSceneEnter(ctx, &domain.SceneEvent{SceneID: "welcome"})
	hooks.OnSceneEnter(ctx, &domain.SceneEvent{SceneID: "welcome"})
	hooks.OnChoice(ctx, &domain.ChoiceEvent{SceneID: "q1", ChoiceID: "c1"})
	hooks.OnPathDiscovered(ctx, &domain.PathEvent{Path: "ignition"})
	hooks.OnComplete(ctx, &domain.CompletionEvent{Outcome: domain.OutcomeQualified})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SceneViews.WithLabelValues("welcome")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ChoicesMade.WithLabelValues("q1", "c1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PathsFinalized.WithLabelValues("ignition")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Completions.WithLabelValues("qualified")))
}

func TestMetrics_DispatchFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.DispatchFailure("sync")
	m.DispatchFailure("sync")
	m.DispatchFailure("analytics")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.DispatchErrors.WithLabelValues("sync")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DispatchErrors.WithLabelValues("analytics")))
}
