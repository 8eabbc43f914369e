// Package registry holds the immutable scene graph for one deployment.
// Content is loaded once from a source, validated, and shared read-only
// across every session.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/logging"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

// Registry is a read-only mapping from scene ID to definition. Safe for
// concurrent reads from any number of callers.
type Registry struct {
	entry    string
	paths    domain.PathSet
	scenes   map[string]domain.SceneDefinition
	order    []string
	problems []string
}

// Option configures registry construction.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report content defects at load time.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Load reads content from a source and builds the registry.
func Load(ctx context.Context, source ports.ContentSource, opts ...Option) (*Registry, error) {
	content, err := source.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load funnel content: %w", err)
	}
	return New(content, opts...)
}

// New builds and validates a registry from an in-memory document.
//
// Structural defects (no entry, duplicate scene IDs, unusable path set,
// negative weights) are fatal. Dangling scene references are a content
// authoring defect, not a runtime one: they are logged and reported via
// Problems, and navigation toward them degrades to a no-op.
func New(content *domain.Content, opts ...Option) (*Registry, error) {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if content == nil || len(content.Scenes) == 0 {
		return nil, fmt.Errorf("funnel content has no scenes")
	}
	if err := content.Paths.Validate(); err != nil {
		return nil, fmt.Errorf("invalid path set: %w", err)
	}

	reg := &Registry{
		entry:  content.EntryScene,
		paths:  append(domain.PathSet(nil), content.Paths...),
		scenes: make(map[string]domain.SceneDefinition, len(content.Scenes)),
	}

	for _, scene := range content.Scenes {
		if scene.ID == "" {
			return nil, fmt.Errorf("scene with empty ID (title %q)", scene.Title)
		}
		if _, dup := reg.scenes[scene.ID]; dup {
			return nil, fmt.Errorf("duplicate scene ID %q", scene.ID)
		}
		for _, choice := range scene.Choices {
			if err := choice.Weights.Validate(reg.paths); err != nil {
				return nil, fmt.Errorf("scene %q choice %q: %w", scene.ID, choice.ID, err)
			}
		}
		reg.scenes[scene.ID] = scene
		reg.order = append(reg.order, scene.ID)
	}

	if reg.entry == "" {
		reg.entry = content.Scenes[0].ID
	}
	if _, ok := reg.scenes[reg.entry]; !ok {
		return nil, fmt.Errorf("entry scene %q does not exist", reg.entry)
	}

	for _, id := range reg.order {
		for _, target := range reg.scenes[id].Targets() {
			if _, ok := reg.scenes[target]; !ok {
				problem := fmt.Sprintf("scene %q links to missing scene %q", id, target)
				reg.problems = append(reg.problems, problem)
				cfg.logger.Warn("dangling scene reference", "scene", id, "target", target)
			}
		}
	}

	return reg, nil
}

// GetScene retrieves a scene definition by ID.
// Returns domain.ErrSceneNotFound for unknown IDs.
func (r *Registry) GetScene(id string) (domain.SceneDefinition, error) {
	scene, ok := r.scenes[id]
	if !ok {
		return domain.SceneDefinition{}, fmt.Errorf("%w: %q", domain.ErrSceneNotFound, id)
	}
	return scene, nil
}

// Has reports whether a scene exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.scenes[id]
	return ok
}

// EntryScene returns the designated entry scene ID.
func (r *Registry) EntryScene() string { return r.entry }

// Paths returns the ordered path set. The slice is shared; do not mutate.
func (r *Registry) Paths() domain.PathSet { return r.paths }

// ListScenes returns all scene IDs in declaration order.
func (r *Registry) ListScenes() []string {
	return append([]string(nil), r.order...)
}

// Problems returns the dangling-reference reports found at load time.
func (r *Registry) Problems() []string {
	return append([]string(nil), r.problems...)
}

// Weights resolves the weight vector of a choice, or nil when the scene or
// choice does not exist. Matches the scoring.WeightLookup signature.
func (r *Registry) Weights(sceneID, choiceID string) domain.WeightVector {
	scene, ok := r.scenes[sceneID]
	if !ok {
		return nil
	}
	choice, ok := scene.Choice(choiceID)
	if !ok {
		return nil
	}
	return choice.Weights
}
