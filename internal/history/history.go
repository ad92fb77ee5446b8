// Package history records playback sessions in a local SQLite database so
// earlier sources can be listed and replayed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ytplay/internal/config"
	"ytplay/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	player      TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	final_state TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions (started_at);
`

// Store is the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the database at the configured history path.
func OpenDefault() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records a session. An ID is generated when the entry has none.
func (s *Store) Add(ctx context.Context, e media.HistoryEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, source, title, player, started_at, finished_at, final_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Title, e.Player,
		e.StartedAt.UnixMilli(), e.FinishedAt.UnixMilli(), e.FinalState,
	)
	if err != nil {
		return "", fmt.Errorf("writing history: %w", err)
	}
	return e.ID, nil
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]media.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, title, player, started_at, finished_at, final_state
		 FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var (
			e                 media.HistoryEntry
			started, finished int64
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Title, &e.Player, &started, &finished, &e.FinalState); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.StartedAt = time.UnixMilli(started)
		e.FinishedAt = time.UnixMilli(finished)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Remove deletes a session by ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing history entry: %w", err)
	}
	return nil
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = e.Source
		}
		display := fmt.Sprintf("%s  %s", e.StartedAt.Format("2006-01-02 15:04"), title)
		if e.FinalState != "" && e.FinalState != "ended" {
			display += fmt.Sprintf(" [%s]", e.FinalState)
		}
		items = append(items, display)
	}
	return items
}
