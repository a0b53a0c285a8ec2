package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/dagaz/internal/apperr"
)

// DayRow is a row in the days table.
type DayRow struct {
	ID        int64
	Date      time.Time
	NoteCount int
	DayText   string
}

// NoteRow is an alive note joined with its owning day's date.
type NoteRow struct {
	ID        int64
	Body      string
	Completed bool
	CreatedAt time.Time
	Date      time.Time
}

// GetDay returns the day row for date, or nil when no row exists.
func (db *DB) GetDay(date time.Time) (*DayRow, error) {
	row := db.conn.QueryRow(
		`SELECT id, date, note_count, day_text FROM days WHERE date = ?`, dateKey(date))
	d, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get day %s: %w", dateKey(date), err)
	}
	return d, nil
}

// DaysBetween returns every day row whose date falls in [start, end].
func (db *DB) DaysBetween(start, end time.Time) ([]DayRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, date, note_count, day_text FROM days
		 WHERE date BETWEEN ? AND ? ORDER BY date`, dateKey(start), dateKey(end))
	if err != nil {
		return nil, fmt.Errorf("store: days between: %w", err)
	}
	defer rows.Close()

	var out []DayRow
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// NotesBetween returns every alive note whose owning day falls in
// [start, end], ordered by date then created_at, each row carrying its
// date. Soft-deleted notes are never returned.
func (db *DB) NotesBetween(start, end time.Time) ([]NoteRow, error) {
	rows, err := db.conn.Query(`
		SELECT n.id, n.body, n.completed, n.created_at, d.date
		FROM notes n JOIN days d ON n.day_id = d.id
		WHERE d.date BETWEEN ? AND ? AND n.deleted_at IS NULL
		ORDER BY d.date, n.created_at, n.id`, dateKey(start), dateKey(end))
	if err != nil {
		return nil, fmt.Errorf("store: notes between: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var n NoteRow
		var ds string
		if err := rows.Scan(&n.ID, &n.Body, &n.Completed, &n.CreatedAt, &ds); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		date, err := parseDateKey(ds)
		if err != nil {
			return nil, err
		}
		n.Date = date
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNote returns a single alive note by id, including its date.
func (db *DB) GetNote(id int64) (*NoteRow, error) {
	var n NoteRow
	var ds string
	err := db.conn.QueryRow(`
		SELECT n.id, n.body, n.completed, n.created_at, d.date
		FROM notes n JOIN days d ON n.day_id = d.id
		WHERE n.id = ? AND n.deleted_at IS NULL`, id).
		Scan(&n.ID, &n.Body, &n.Completed, &n.CreatedAt, &ds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note %d: %w", id, err)
	}
	date, err := parseDateKey(ds)
	if err != nil {
		return nil, err
	}
	n.Date = date
	return &n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(r rowScanner) (*DayRow, error) {
	var d DayRow
	var ds string
	if err := r.Scan(&d.ID, &ds, &d.NoteCount, &d.DayText); err != nil {
		return nil, err
	}
	date, err := parseDateKey(ds)
	if err != nil {
		return nil, err
	}
	d.Date = date
	return &d, nil
}
