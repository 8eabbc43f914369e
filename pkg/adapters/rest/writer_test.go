package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/adapters/rest"
	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

type capturedRequest struct {
	Path    string
	Query   string
	Prefer  string
	APIKey  string
	Payload map[string]any
}

func TestWriter_SessionUpsert(t *testing.T) {
	var mu sync.Mutex
	var captured []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		captured = append(captured, capturedRequest{
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Prefer:  r.Header.Get("Prefer"),
			APIKey:  r.Header.Get("apikey"),
			Payload: payload,
		})
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	writer := rest.New(server.URL, "secret-key")
	ctx := context.Background()

	record := domain.SessionRecord{
		SessionID:      "s-1",
		CurrentSceneID: "welcome",
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, writer.Write(ctx, domain.TableSessions, record))

	choice := domain.ChoiceEventRecord{SessionID: "s-1", SceneID: "q1", ChoiceID: "c1", MadeAt: time.Now()}
	require.NoError(t, writer.Write(ctx, domain.TableChoices, choice))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, captured, 2)

	assert.Equal(t, "/rest/v1/adventure_sessions", captured[0].Path)
	assert.Equal(t, "on_conflict=session_id", captured[0].Query)
	assert.Contains(t, captured[0].Prefer, "merge-duplicates")
	assert.Equal(t, "secret-key", captured[0].APIKey)
	assert.Equal(t, "s-1", captured[0].Payload["session_id"])

	assert.Equal(t, "/rest/v1/adventure_choices", captured[1].Path)
	assert.Empty(t, captured[1].Query, "append-only tables do not upsert")
	assert.Equal(t, "return=minimal", captured[1].Prefer)
}

func TestWriter_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "row level security", http.StatusForbidden)
	}))
	defer server.Close()

	writer := rest.New(server.URL, "")
	err := writer.Write(context.Background(), domain.TableContacts, domain.LeadRecord{SessionID: "s-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestWriter_UnreachableBackend(t *testing.T) {
	writer := rest.New("http://127.0.0.1:1", "")
	err := writer.Write(context.Background(), domain.TableSessions, domain.SessionRecord{SessionID: "s-1"})
	assert.Error(t, err)
}
