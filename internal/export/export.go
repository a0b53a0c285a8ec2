// Package export writes day documents to Markdown files and re-imports
// edits made to them.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/dagaz/internal/journal"
)

// Exporter writes day documents into a flat directory, one file per
// calendar day named YYYY-MM-DD.md.
type Exporter struct {
	root string
}

// New creates an exporter rooted at dir, creating it if needed.
func New(dir string) (*Exporter, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("export: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("export: create dir: %w", err)
	}
	return &Exporter{root: abs}, nil
}

// Root returns the absolute export directory.
func (e *Exporter) Root() string {
	return e.root
}

// FileName returns the file name used for a date's document.
func FileName(date time.Time) string {
	return journal.DateOf(date).Format(journal.DateFormat) + ".md"
}

// DateFromFileName recovers the calendar day from an export file name,
// reporting ok=false for files that are not day documents.
func DateFromFileName(name string) (time.Time, bool) {
	base := filepath.Base(name)
	if filepath.Ext(base) != ".md" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(journal.DateFormat, base[:len(base)-len(".md")], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// WriteDay renders the day in editable form and writes it atomically:
// tmp file, fsync, rename.
func (e *Exporter) WriteDay(day journal.DayNotes, now time.Time) error {
	target := filepath.Join(e.root, FileName(day.Date))

	tmp, err := os.CreateTemp(e.root, ".dagaz-tmp-*")
	if err != nil {
		return fmt.Errorf("export: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(day.Markdown(now, true)); err != nil {
		return fmt.Errorf("export: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("export: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close temp: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("export: rename: %w", err)
	}
	success = true
	return nil
}

// WriteDays exports every day in the slice.
func (e *Exporter) WriteDays(days []journal.DayNotes, now time.Time) error {
	for _, d := range days {
		if err := e.WriteDay(d, now); err != nil {
			return err
		}
	}
	return nil
}
