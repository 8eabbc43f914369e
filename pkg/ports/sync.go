package ports

import (
	"context"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// RecordWriter mirrors session data to the remote collaborator.
//
// Writes are best-effort: the dispatcher logs failures and never surfaces
// them to gameplay. Implementations must not retry synchronously or block
// beyond the context deadline. Session rows should upsert by session ID;
// event and lead rows insert.
type RecordWriter interface {
	Write(ctx context.Context, table domain.Table, record any) error
}

// Collector receives analytics events. Loss is acceptable; a failing
// collector must never affect gameplay or persistence.
type Collector interface {
	Collect(ctx context.Context, event domain.Event) error
}
