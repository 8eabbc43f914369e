package ports

import (
	"context"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// SnapshotStore persists durable session snapshots. This is the resume
// mechanism: the snapshot is the source of truth for rehydrating a session,
// independent of the best-effort remote mirror.
type SnapshotStore interface {
	// Save overwrites the snapshot for a session. Last writer wins; there
	// is no merge.
	Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a session.
	// Returns domain.ErrSessionNotFound if no snapshot exists.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs with stored snapshots.
	List(ctx context.Context) ([]string, error)
}
