package ports

import (
	"context"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// ContentSource provides the authored funnel document. Sources are read
// exactly once, at registry construction; the registry is immutable after.
type ContentSource interface {
	// Content returns the complete funnel document.
	Content(ctx context.Context) (*domain.Content, error)
}

// Watchable is implemented by sources that can signal content changes.
// Used for hot-reload in development mode.
type Watchable interface {
	// Watch returns a channel signaled when the underlying content changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
