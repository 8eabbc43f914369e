// Package rest mirrors session records to a hosted PostgREST-style data
// store over HTTP. Writes are best-effort: the engine's dispatcher logs
// failures and gameplay never waits on them.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

// Writer implements ports.RecordWriter against a REST endpoint exposing one
// route per table (POST {base}/rest/v1/{table}).
type Writer struct {
	baseURL string
	apiKey  string
	client  *http.Client

	// upsertConflictKeys maps tables with upsert semantics to their
	// conflict column.
	upsertConflictKeys map[domain.Table]string
}

// Option configures the Writer.
type Option func(*Writer)

// WithHTTPClient overrides the HTTP client (default timeout 10s).
func WithHTTPClient(client *http.Client) Option {
	return func(w *Writer) {
		if client != nil {
			w.client = client
		}
	}
}

// New creates a Writer for the given endpoint and API key.
func New(baseURL, apiKey string, opts ...Option) *Writer {
	w := &Writer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		upsertConflictKeys: map[domain.Table]string{
			domain.TableSessions: "session_id",
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write posts the record to its table route. Session rows upsert by session
// ID; everything else inserts.
func (w *Writer) Write(ctx context.Context, table domain.Table, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", table, err)
	}

	url := fmt.Sprintf("%s/rest/v1/%s", w.baseURL, table)
	if key, ok := w.upsertConflictKeys[table]; ok {
		url += "?on_conflict=" + key
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", table, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	if _, ok := w.upsertConflictKeys[table]; ok {
		req.Header.Set("Prefer", "return=minimal,resolution=merge-duplicates")
	}
	if w.apiKey != "" {
		req.Header.Set("apikey", w.apiKey)
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("write to %s failed: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little of the body for the log line; the dispatcher
		// swallows this error either way.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("write to %s returned %d: %s", table, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
