package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/sqlite"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

func openTestWriter(t *testing.T) *sqlite.Writer {
	t.Helper()
	w, err := sqlite.Open(filepath.Join(t.TempDir(), "funnel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWriter_SessionUpsert(t *testing.T) {
	w := openTestWriter(t)
	ctx := context.Background()

	started := time.Now()
	rec := domain.SessionRecord{
		SessionID:      "s-1",
		PlayerName:     "Ada",
		CurrentSceneID: "welcome",
		StartedAt:      &started,
		UpdatedAt:      started,
	}
	require.NoError(t, w.Write(ctx, domain.TableSessions, rec))

	// A second write for the same session must replace, not duplicate.
	rec.CurrentSceneID = "mission-select"
	rec.IsCompleted = true
	rec.FinalPath = "ignition"
	rec.UpdatedAt = started.Add(time.Minute)
	require.NoError(t, w.Write(ctx, domain.TableSessions, rec))

	rows, err := w.CountRows(ctx, "adventure_sessions")
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestWriter_StaleSessionWriteDoesNotClobber(t *testing.T) {
	w := openTestWriter(t)
	ctx := context.Background()

	now := time.Now()
	newer := domain.SessionRecord{
		SessionID:      "s-2",
		CurrentSceneID: "end",
		IsCompleted:    true,
		UpdatedAt:      now,
	}
	require.NoError(t, w.Write(ctx, domain.TableSessions, newer))

	// An out-of-date row arriving late must lose against the stored one.
	stale := domain.SessionRecord{
		SessionID:      "s-2",
		CurrentSceneID: "q1",
		UpdatedAt:      now.Add(-time.Minute),
	}
	require.NoError(t, w.Write(ctx, domain.TableSessions, stale))

	scene, err := w.SessionScene(ctx, "s-2")
	require.NoError(t, err)
	assert.Equal(t, "end", scene)
}

func TestWriter_ChoicesAppend(t *testing.T) {
	w := openTestWriter(t)
	ctx := context.Background()

	for _, choice := range []string{"c1", "c2", "c1"} {
		rec := domain.ChoiceEventRecord{SessionID: "s-1", SceneID: "q1", ChoiceID: choice, MadeAt: time.Now()}
		require.NoError(t, w.Write(ctx, domain.TableChoices, rec))
	}

	rows, err := w.CountRows(ctx, "adventure_choices")
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
}

func TestWriter_LeadsShareTable(t *testing.T) {
	w := openTestWriter(t)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, domain.TableContacts, domain.LeadRecord{
		SessionID: "s-1", Email: "ada@example.com", SubmittedAt: time.Now(),
	}))
	require.NoError(t, w.Write(ctx, domain.TableQualifications, domain.LeadRecord{
		SessionID:   "s-1",
		Answers:     map[string]string{"budget": "ready", "timeline": "now"},
		SubmittedAt: time.Now(),
	}))

	rows, err := w.CountRows(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
}

func TestWriter_UnsupportedRecordType(t *testing.T) {
	w := openTestWriter(t)
	err := w.Write(context.Background(), domain.TableSessions, struct{ X int }{1})
	assert.Error(t, err)
}
