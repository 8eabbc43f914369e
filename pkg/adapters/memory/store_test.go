package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/memory"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewSessionState("iso", "welcome", domain.PathSet{"a", "b"})
	state.VisitedScenes["welcome"] = 1
	require.NoError(t, store.Save(ctx, "iso", state.Snapshot()))

	// Mutating the loaded copy must not affect the stored snapshot.
	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	loaded.VisitedScenes["welcome"] = 99

	fresh, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.VisitedScenes["welcome"])
}
