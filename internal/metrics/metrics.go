// Package metrics exposes Prometheus counters for funnel activity. The
// counters attach to the engine through lifecycle hooks and the dispatcher's
// failure callback, so the hot path never imports this package.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// Metrics bundles the funnel counters.
type Metrics struct {
	SceneViews     *prometheus.CounterVec
	ChoicesMade    *prometheus.CounterVec
	PathsFinalized *prometheus.CounterVec
	Completions    *prometheus.CounterVec
	DispatchErrors *prometheus.CounterVec
}

// New creates the counters and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SceneViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "scene_views_total",
			Help:      "Scene views by scene ID.",
		}, []string{"scene"}),
		ChoicesMade: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "choices_made_total",
			Help:      "Choices recorded by scene and choice ID.",
		}, []string{"scene", "choice"}),
		PathsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "paths_finalized_total",
			Help:      "Sessions finalized by winning path.",
		}, []string{"path"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "completions_total",
			Help:      "Completed sessions by outcome.",
		}, []string{"outcome"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "dispatch_errors_total",
			Help:      "Background persistence and sync failures by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.SceneViews, m.ChoicesMade, m.PathsFinalized, m.Completions, m.DispatchErrors)
	return m
}

// Hooks returns lifecycle hooks that feed the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSceneEnter: func(_ context.Context, ev *domain.SceneEvent) {
			m.SceneViews.WithLabelValues(ev.SceneID).Inc()
		},
		OnChoice: func(_ context.Context, ev *domain.ChoiceEvent) {
			m.ChoicesMade.WithLabelValues(ev.SceneID, ev.ChoiceID).Inc()
		},
		OnPathDiscovered: func(_ context.Context, ev *domain.PathEvent) {
			m.PathsFinalized.WithLabelValues(string(ev.Path)).Inc()
		},
		OnComplete: func(_ context.Context, ev *domain.CompletionEvent) {
			m.Completions.WithLabelValues(string(ev.Outcome)).Inc()
		},
	}
}

// DispatchFailure counts background persistence and sync failures. It has
// the shape session.WithFailureCallback expects.
func (m *Metrics) DispatchFailure(kind string) {
	m.DispatchErrors.WithLabelValues(kind).Inc()
}
