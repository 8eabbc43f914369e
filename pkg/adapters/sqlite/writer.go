// Package sqlite persists session records to a local SQLite database. It is
// the offline-friendly alternative to the REST writer: the serve command
// falls back to it when no remote endpoint is configured.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS adventure_sessions (
	session_id       TEXT PRIMARY KEY,
	player_name      TEXT,
	is_generated     INTEGER NOT NULL DEFAULT 0,
	current_scene_id TEXT NOT NULL,
	final_path       TEXT,
	is_completed     INTEGER NOT NULL DEFAULT 0,
	final_outcome    TEXT,
	started_at       TEXT,
	completed_at     TEXT,
	updated_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS adventure_choices (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	scene_id   TEXT NOT NULL,
	choice_id  TEXT NOT NULL,
	made_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS leads (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	destination      TEXT NOT NULL,
	session_id       TEXT NOT NULL,
	name             TEXT,
	email            TEXT,
	phone            TEXT,
	preferred_method TEXT,
	answers          TEXT,
	submitted_at     TEXT NOT NULL
);
`

// timeLayout is fixed width UTC so stored timestamps compare correctly as
// text, which the session upsert guard relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Writer implements ports.RecordWriter on a SQLite file. Lead tables share
// one physical table with a destination column, which keeps local inspection
// to a single query.
type Writer struct {
	db *sql.DB
}

// Open creates (or opens) the database at path and applies the schema.
func Open(path string) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Writer{db: db}, nil
}

// Close closes the underlying database.
func (w *Writer) Close() error {
	return w.db.Close()
}

// Write routes the record to its table by concrete type.
func (w *Writer) Write(ctx context.Context, table domain.Table, record any) error {
	switch rec := record.(type) {
	case domain.SessionRecord:
		return w.writeSession(ctx, rec)
	case domain.ChoiceEventRecord:
		return w.writeChoice(ctx, rec)
	case domain.LeadRecord:
		return w.writeLead(ctx, table, rec)
	default:
		return fmt.Errorf("unsupported record type %T for table %s", record, table)
	}
}

func (w *Writer) writeSession(ctx context.Context, rec domain.SessionRecord) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO adventure_sessions (
			session_id, player_name, is_generated, current_scene_id,
			final_path, is_completed, final_outcome, started_at, completed_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			player_name      = excluded.player_name,
			is_generated     = excluded.is_generated,
			current_scene_id = excluded.current_scene_id,
			final_path       = excluded.final_path,
			is_completed     = excluded.is_completed,
			final_outcome    = excluded.final_outcome,
			started_at       = excluded.started_at,
			completed_at     = excluded.completed_at,
			updated_at       = excluded.updated_at
		WHERE excluded.updated_at >= adventure_sessions.updated_at`,
		rec.SessionID, rec.PlayerName, rec.IsGenerated, rec.CurrentSceneID,
		rec.FinalPath, rec.IsCompleted, rec.FinalOutcome,
		timePtr(rec.StartedAt), timePtr(rec.CompletedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session row: %w", err)
	}
	return nil
}

func (w *Writer) writeChoice(ctx context.Context, rec domain.ChoiceEventRecord) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO adventure_choices (session_id, scene_id, choice_id, made_at)
		VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.SceneID, rec.ChoiceID, formatTime(rec.MadeAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert choice row: %w", err)
	}
	return nil
}

func (w *Writer) writeLead(ctx context.Context, table domain.Table, rec domain.LeadRecord) error {
	var answers any
	if len(rec.Answers) > 0 {
		data, err := json.Marshal(rec.Answers)
		if err != nil {
			return fmt.Errorf("failed to marshal answers: %w", err)
		}
		answers = string(data)
	}
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO leads (destination, session_id, name, email, phone, preferred_method, answers, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(table), rec.SessionID, rec.Name, rec.Email, rec.Phone,
		rec.PreferredMethod, answers, formatTime(rec.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead row: %w", err)
	}
	return nil
}

// CountRows returns the number of rows in one of the schema tables.
func (w *Writer) CountRows(ctx context.Context, table string) (int, error) {
	allowed := map[string]bool{"adventure_sessions": true, "adventure_choices": true, "leads": true}
	if !allowed[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// SessionScene returns the stored current scene for a session. Used to
// inspect the mirror in tests and tooling.
func (w *Writer) SessionScene(ctx context.Context, sessionID string) (string, error) {
	var scene string
	err := w.db.QueryRowContext(ctx,
		"SELECT current_scene_id FROM adventure_sessions WHERE session_id = ?", sessionID,
	).Scan(&scene)
	if err != nil {
		return "", fmt.Errorf("failed to read session row: %w", err)
	}
	return scene, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
