// Package testutil provides shared test helpers for setting up
// temporary databases and seeded days.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedDay persists fresh notes for date through the reconciler and
// returns the resulting snapshot.
func SeedDay(t *testing.T, svc *dayservice.Service, date time.Time, bodies ...string) *journal.DayNotes {
	t.Helper()
	doc := journal.Document{Date: journal.DateOf(date), NoteCount: len(bodies)}
	for i, b := range bodies {
		// Staggered timestamps keep created_at ordering deterministic.
		doc.Intents = append(doc.Intents, journal.AddNote{
			Body:      b,
			CreatedAt: journal.DateOf(date).Add(time.Duration(i+1) * time.Minute),
		})
	}
	day, err := svc.SyncDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("seed %s: %v", date.Format(journal.DateFormat), err)
	}
	return day
}
