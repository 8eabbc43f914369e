package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// RunSnapshotStoreContract runs a suite of tests verifying that a
// SnapshotStore implementation adheres to the interface contract. Adapter
// packages call this from their own tests.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	paths := domain.PathSet{"ignition", "launch_control", "interstellar"}

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, "welcome", paths)
		state.VisitedScenes["welcome"] = 1
		state.PathScores["ignition"] = 3
		state.Discovered["ignition"] = struct{}{}

		err := store.Save(ctx, sessionID, state.Snapshot())
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "welcome", loaded.CurrentSceneID)
		assert.Equal(t, 1, loaded.VisitedScenes["welcome"])
		assert.Equal(t, 3, loaded.PathScores["ignition"])
		assert.Equal(t, []domain.PathName{"ignition"}, loaded.DiscoveredPaths)
	})

	t.Run("Overwrite is last-writer-wins", func(t *testing.T) {
		first := domain.NewSessionState(sessionID, "welcome", paths)
		require.NoError(t, store.Save(ctx, sessionID, first.Snapshot()))

		second := domain.NewSessionState(sessionID, "mission-select", paths)
		require.NoError(t, store.Save(ctx, sessionID, second.Snapshot()))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "mission-select", loaded.CurrentSceneID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		state := domain.NewSessionState(sessionID, "welcome", paths)
		require.NoError(t, store.Save(ctx, sessionID, state.Snapshot()))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSessionState(id1, "welcome", paths).Snapshot())
		_ = store.Save(ctx, id2, domain.NewSessionState(id2, "welcome", paths).Snapshot())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
