package store

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "dagaz-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var day1 = time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC)

func mustTx(t *testing.T, db *DB) *Tx {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return tx
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM days`).Scan(&count); err != nil {
		t.Fatalf("days table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestGetDay_Absent(t *testing.T) {
	db := testDB(t)
	d, err := db.GetDay(day1)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if d != nil {
		t.Errorf("expected nil for absent day, got %+v", d)
	}
}

func TestUpsertDay_InsertThenOverwrite(t *testing.T) {
	db := testDB(t)

	tx := mustTx(t, db)
	id1, err := tx.UpsertDay(day1, 2, "first text")
	if err != nil {
		t.Fatalf("UpsertDay: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	tx = mustTx(t, db)
	id2, err := tx.UpsertDay(day1, 5, "second text")
	if err != nil {
		t.Fatalf("UpsertDay overwrite: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if id1 != id2 {
		t.Errorf("day id changed on upsert: %d vs %d", id1, id2)
	}
	d, err := db.GetDay(day1)
	if err != nil || d == nil {
		t.Fatalf("GetDay: %v %v", d, err)
	}
	if d.NoteCount != 5 || d.DayText != "second text" {
		t.Errorf("day = %+v, want count 5 / second text", d)
	}
}

func TestEnsureDay_LeavesExistingUntouched(t *testing.T) {
	db := testDB(t)

	tx := mustTx(t, db)
	if _, err := tx.UpsertDay(day1, 3, "keep me"); err != nil {
		t.Fatal(err)
	}
	id, err := tx.EnsureDay(day1)
	if err != nil {
		t.Fatalf("EnsureDay: %v", err)
	}
	if id == 0 {
		t.Error("EnsureDay returned zero id")
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	d, _ := db.GetDay(day1)
	if d.DayText != "keep me" || d.NoteCount != 3 {
		t.Errorf("EnsureDay clobbered existing row: %+v", d)
	}
}

func TestInsertUpdateNote(t *testing.T) {
	db := testDB(t)
	created := day1.Add(9 * time.Hour)

	tx := mustTx(t, db)
	dayID, err := tx.EnsureDay(day1)
	if err != nil {
		t.Fatal(err)
	}
	id, err := tx.InsertNote("buy milk", created, false, dayID)
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	if err := tx.UpdateNote(id, "buy oat milk", true, created.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	n, err := db.GetNote(id)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Body != "buy oat milk" || !n.Completed {
		t.Errorf("note = %+v", n)
	}
	if !n.CreatedAt.Equal(created) {
		t.Errorf("created_at changed by update: %v vs %v", n.CreatedAt, created)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	db := testDB(t)
	tx := mustTx(t, db)
	defer tx.Rollback()

	err := tx.UpdateNote(999, "ghost", false, time.Now().UTC())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSoftDelete_ExcludedFromReads(t *testing.T) {
	db := testDB(t)

	tx := mustTx(t, db)
	dayID, _ := tx.EnsureDay(day1)
	keep, _ := tx.InsertNote("keep", day1.Add(time.Hour), false, dayID)
	gone, _ := tx.InsertNote("gone", day1.Add(2*time.Hour), false, dayID)
	if err := tx.SoftDeleteNote(gone, day1.Add(3*time.Hour)); err != nil {
		t.Fatalf("SoftDeleteNote: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	rows, err := db.NotesBetween(day1, day1)
	if err != nil {
		t.Fatalf("NotesBetween: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != keep {
		t.Errorf("rows = %+v, want only note %d", rows, keep)
	}
	if _, err := db.GetNote(gone); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted note readable: %v", err)
	}

	// The row survives physically.
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("physical rows = %d, want 2", total)
	}
}

func TestNotesBetween_OrderAndDates(t *testing.T) {
	db := testDB(t)
	day2 := day1.AddDate(0, 0, 1)

	tx := mustTx(t, db)
	d1, _ := tx.EnsureDay(day1)
	d2, _ := tx.EnsureDay(day2)
	_, _ = tx.InsertNote("later", day1.Add(10*time.Hour), false, d1)
	_, _ = tx.InsertNote("earlier", day1.Add(8*time.Hour), false, d1)
	_, _ = tx.InsertNote("next day", day2.Add(time.Hour), false, d2)
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	rows, err := db.NotesBetween(day1, day2)
	if err != nil {
		t.Fatalf("NotesBetween: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len = %d, want 3", len(rows))
	}
	if rows[0].Body != "earlier" || rows[1].Body != "later" || rows[2].Body != "next day" {
		t.Errorf("order = %q %q %q", rows[0].Body, rows[1].Body, rows[2].Body)
	}
	if !rows[2].Date.Equal(day2) {
		t.Errorf("date = %v, want %v", rows[2].Date, day2)
	}
}

func TestRollback_NoPartialWrites(t *testing.T) {
	db := testDB(t)

	tx := mustTx(t, db)
	dayID, _ := tx.UpsertDay(day1, 1, "doomed")
	_, _ = tx.InsertNote("doomed note", day1, false, dayID)
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	d, err := db.GetDay(day1)
	if err != nil {
		t.Fatal(err)
	}
	if d != nil {
		t.Errorf("day visible after rollback: %+v", d)
	}
}
