package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/dagaz/internal/apperr"
)

// Tx scopes a sequence of writes to one SQLite transaction. It is the
// module's only hard transactional boundary: reconciliation either
// commits completely or leaves no visible state behind.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction.
func (db *DB) Begin() (*Tx, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to defer after Begin: rolling
// back a committed transaction returns an error callers ignore.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// EnsureDay inserts a day row for date if none exists and returns its
// id. An existing row is left untouched.
func (t *Tx) EnsureDay(date time.Time) (int64, error) {
	if _, err := t.tx.Exec(
		`INSERT INTO days (date) VALUES (?) ON CONFLICT (date) DO NOTHING`,
		dateKey(date)); err != nil {
		return 0, fmt.Errorf("store: ensure day: %w", err)
	}
	return t.dayID(date)
}

// UpsertDay inserts or overwrites the day row for date. note_count and
// day_text are replaced unconditionally: last edit wins.
func (t *Tx) UpsertDay(date time.Time, noteCount int, dayText string) (int64, error) {
	if _, err := t.tx.Exec(`
		INSERT INTO days (date, note_count, day_text) VALUES (?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			note_count = excluded.note_count,
			day_text   = excluded.day_text`,
		dateKey(date), noteCount, dayText); err != nil {
		return 0, fmt.Errorf("store: upsert day: %w", err)
	}
	return t.dayID(date)
}

// AliveNoteIDs returns the ids of every non-deleted note owned by the
// day, in created_at order.
func (t *Tx) AliveNoteIDs(dayID int64) ([]int64, error) {
	rows, err := t.tx.Query(
		`SELECT id FROM notes WHERE day_id = ? AND deleted_at IS NULL ORDER BY created_at, id`, dayID)
	if err != nil {
		return nil, fmt.Errorf("store: alive note ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// InsertNote inserts a fresh note owned by dayID and returns its
// storage-assigned id.
func (t *Tx) InsertNote(body string, createdAt time.Time, completed bool, dayID int64) (int64, error) {
	res, err := t.tx.Exec(
		`INSERT INTO notes (body, created_at, completed, day_id) VALUES (?, ?, ?, ?)`,
		body, createdAt.UTC(), completed, dayID)
	if err != nil {
		return 0, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert note id: %w", err)
	}
	return id, nil
}

// UpdateNote rewrites an existing note's body and completion flag and
// stamps updated_at. created_at is never touched. Updating an id with
// no live row fails with apperr.ErrNotFound.
func (t *Tx) UpdateNote(id int64, body string, completed bool, now time.Time) error {
	res, err := t.tx.Exec(
		`UPDATE notes SET body = ?, completed = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		body, completed, now.UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update note %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update note %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("store: update note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SoftDeleteNote stamps deleted_at, excluding the note from all future
// reads without removing the row.
func (t *Tx) SoftDeleteNote(id int64, at time.Time) error {
	if _, err := t.tx.Exec(
		`UPDATE notes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), id); err != nil {
		return fmt.Errorf("store: soft delete note %d: %w", id, err)
	}
	return nil
}

// RecountNotes refreshes the denormalized alive-note count for a day.
func (t *Tx) RecountNotes(dayID int64) error {
	if _, err := t.tx.Exec(`
		UPDATE days SET note_count =
			(SELECT COUNT(*) FROM notes WHERE day_id = days.id AND deleted_at IS NULL)
		WHERE id = ?`, dayID); err != nil {
		return fmt.Errorf("store: recount notes: %w", err)
	}
	return nil
}

func (t *Tx) dayID(date time.Time) (int64, error) {
	var id int64
	if err := t.tx.QueryRow(
		`SELECT id FROM days WHERE date = ?`, dateKey(date)).Scan(&id); err != nil {
		return 0, fmt.Errorf("store: day id: %w", err)
	}
	return id, nil
}
