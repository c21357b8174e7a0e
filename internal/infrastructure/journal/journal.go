// Package journal keeps a persistent log of add and sync runs.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/tesso57/pood/internal/domain/activity"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	action        TEXT    NOT NULL,
	podcast_title TEXT    NOT NULL,
	feed_url      TEXT    NOT NULL,
	dir           TEXT    NOT NULL DEFAULT '',
	new_episodes  INTEGER NOT NULL DEFAULT 0,
	at            INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_at ON runs(at);
`

// Manager stores journal entries in a sqlite database.
type Manager struct {
	db   *sql.DB
	path string
}

// Open opens or creates the journal database at path.
func Open(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal %s: %w", path, err)
	}
	return new(Manager{db: db, path: path}), nil
}

// Path returns the database file path.
func (m *Manager) Path() string {
	return m.path
}

// Close releases the database handle.
func (m *Manager) Close() error {
	return m.db.Close()
}

// Record appends an entry. A zero At is stamped with the current time.
func (m *Manager) Record(ctx context.Context, e activity.Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO runs (action, podcast_title, feed_url, dir, new_episodes, at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Action, e.PodcastTitle, e.FeedURL, e.Dir, e.NewEpisodes, e.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record %s run: %w", e.Action, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (m *Manager) Recent(ctx context.Context, limit int) ([]activity.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, action, podcast_title, feed_url, dir, new_episodes, at FROM runs ORDER BY at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []activity.Entry
	for rows.Next() {
		var (
			e  activity.Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.PodcastTitle, &e.FeedURL, &e.Dir, &e.NewEpisodes, &at); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastSync returns the most recent sync entry for feedURL, if any.
func (m *Manager) LastSync(ctx context.Context, feedURL string) (*activity.Entry, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT id, action, podcast_title, feed_url, dir, new_episodes, at FROM runs WHERE action = ? AND feed_url = ? ORDER BY at DESC, id DESC LIMIT 1`,
		activity.ActionSync, feedURL,
	)
	var (
		e  activity.Entry
		at int64
	)
	if err := row.Scan(&e.ID, &e.Action, &e.PodcastTitle, &e.FeedURL, &e.Dir, &e.NewEpisodes, &at); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query last sync: %w", err)
	}
	e.At = time.Unix(0, at)
	return &e, nil
}
