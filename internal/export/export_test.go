package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/journal"
)

var now = time.Date(2025, 10, 12, 9, 0, 0, 0, time.UTC)

func TestFileName(t *testing.T) {
	got := FileName(now)
	if got != "2025-10-12.md" {
		t.Errorf("FileName = %q", got)
	}
}

func TestDateFromFileName(t *testing.T) {
	d, ok := DateFromFileName("/some/dir/2025-10-12.md")
	if !ok || d.Format(journal.DateFormat) != "2025-10-12" {
		t.Errorf("got %v %v", d, ok)
	}
	for _, bad := range []string{"notes.md", "2025-10-12.txt", ".dagaz-tmp-123"} {
		if _, ok := DateFromFileName(bad); ok {
			t.Errorf("%q: expected not a day file", bad)
		}
	}
}

func TestWriteDay_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	e, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	day := journal.DayNotes{
		Date:      journal.DateOf(now),
		Notes:     []journal.Note{{ID: 7, Body: "pack bags", CreatedAt: now}},
		NoteCount: 1,
		DayText:   "travel day\n",
	}
	if err := e.WriteDay(day, now); err != nil {
		t.Fatalf("WriteDay: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "2025-10-12.md"))
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	doc, err := journal.ParseDocument(string(data), now)
	if err != nil {
		t.Fatalf("exported file does not parse: %v", err)
	}
	if !doc.Date.Equal(day.Date) || len(doc.Intents) != 1 || doc.DayText != day.DayText {
		t.Errorf("doc = %+v", doc)
	}

	// No temp droppings left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

type recordingSyncer struct {
	docs chan journal.Document
}

func (r *recordingSyncer) SyncDocument(_ context.Context, doc journal.Document) (*journal.DayNotes, error) {
	r.docs <- doc
	return &journal.DayNotes{Date: doc.Date, Notes: []journal.Note{}}, nil
}

func TestWatch_ResyncsEditedDayFile(t *testing.T) {
	dir := t.TempDir()
	syncer := &recordingSyncer{docs: make(chan journal.Document, 4)}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, dir, syncer, logger)
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	content := "# Day: 2025-10-12\n\n - [ ] :from the file\n---\n"
	if err := os.WriteFile(filepath.Join(dir, "2025-10-12.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case doc := <-syncer.docs:
		if doc.Date.Format(journal.DateFormat) != "2025-10-12" || len(doc.Intents) != 1 {
			t.Errorf("doc = %+v", doc)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for watcher sync")
	}

	// Non-day files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "scratch.md"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case doc := <-syncer.docs:
		t.Errorf("unexpected sync for non-day file: %+v", doc)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	<-done
}
