// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// journalSchema creates the save journal table.
const journalSchema = `
CREATE TABLE IF NOT EXISTS saves (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	tab        TEXT NOT NULL,
	turns      INTEGER NOT NULL,
	model      TEXT NOT NULL,
	saved_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
`

// SaveRecord is one row of the save journal.
type SaveRecord struct {
	ID      string
	Path    string
	Tab     string
	Turns   int
	Model   string
	SavedAt time.Time
}

// Journal records every successful save in a SQLite database so recently
// written files can be offered for /load completion.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// OpenJournal opens (creating if needed) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// A single connection serialises writers; the REPL is the only user.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Record appends a save entry and returns its generated id.
func (j *Journal) Record(ctx context.Context, path, tab string, turns int, modelID string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	id := uuid.NewString()
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO saves (id, path, tab, turns, model, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, abs, tab, turns, modelID, j.now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to record save: %w", err)
	}
	return id, nil
}

// Recent returns up to n most recent saves, newest first. Paths saved more
// than once appear only for their latest save.
func (j *Journal) Recent(ctx context.Context, n int) ([]SaveRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.path, s.tab, s.turns, s.model, s.saved_at
		FROM saves s
		JOIN (SELECT path, MAX(saved_at) AS latest FROM saves GROUP BY path) l
		  ON s.path = l.path AND s.saved_at = l.latest
		ORDER BY s.saved_at DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query saves: %w", err)
	}
	defer rows.Close()

	var out []SaveRecord
	for rows.Next() {
		var rec SaveRecord
		var savedAt int64
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Tab, &rec.Turns, &rec.Model, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		rec.SavedAt = time.Unix(0, savedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
