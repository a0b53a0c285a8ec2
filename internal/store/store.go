// Package store provides SQLite-backed persistence for days and notes.
// Notes are soft-deleted: a stamped deleted_at excludes a row from every
// read path but the row itself is never removed.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS days (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	date       TEXT NOT NULL UNIQUE,
	note_count INTEGER NOT NULL DEFAULT 0,
	day_text   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	day_id     INTEGER NOT NULL REFERENCES days(id),
	body       TEXT NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME,
	deleted_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_notes_day ON notes(day_id, deleted_at);
`

// dateFormat matches journal.DateFormat; days are keyed by their ISO
// date string so BETWEEN comparisons stay lexicographic.
const dateFormat = "2006-01-02"

// DB wraps a sql.DB with journal-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func dateKey(d time.Time) string {
	return d.UTC().Format(dateFormat)
}

func parseDateKey(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: bad date key %q: %w", s, err)
	}
	return d, nil
}
