// Package dayservice applies parsed day documents to storage and
// reconstructs day snapshots for display. It is the only component with
// side effects; all text handling stays in the journal codecs.
package dayservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/store"
)

// Service coordinates reconciliation and range reads over the store.
type Service struct {
	db  *store.DB
	now func() time.Time
}

// New creates a day service.
func New(db *store.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// SyncDocument reconciles an edited day document against storage inside
// one transaction:
//
//   - the day row is upserted, note_count and day_text replaced
//     unconditionally (last edit wins),
//   - AddNote intents insert fresh notes, UpdateNote intents rewrite
//     existing ones (an unknown id aborts everything),
//   - notes the document no longer mentions are soft-deleted.
//
// On success it returns the authoritative post-write snapshot with
// notes in created_at order. On any failure the transaction rolls back
// and previously persisted state is untouched.
func (s *Service) SyncDocument(ctx context.Context, doc journal.Document) (*journal.DayNotes, error) {
	now := s.now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	dayID, err := tx.UpsertDay(doc.Date, doc.NoteCount, doc.DayText)
	if err != nil {
		return nil, err
	}
	existing, err := tx.AliveNoteIDs(dayID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(existing))
	for _, intent := range doc.Intents {
		switch in := intent.(type) {
		case journal.AddNote:
			if _, err := tx.InsertNote(in.Body, in.CreatedAt, in.Completed, dayID); err != nil {
				return nil, err
			}
		case journal.UpdateNote:
			if err := tx.UpdateNote(in.ID, in.Body, in.Completed, now); err != nil {
				return nil, err
			}
			seen[in.ID] = true
		}
	}

	// Deletion by omission: anything alive before the edit that the
	// document no longer references.
	for _, id := range existing {
		if !seen[id] {
			if err := tx.SoftDeleteNote(id, now); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("dayservice: commit sync: %w", err)
	}
	return s.Day(ctx, doc.Date)
}

// QuickAdd inserts a single note for today, creating the day row if
// this is its first write.
func (s *Service) QuickAdd(ctx context.Context, body string, completed bool) (*journal.Note, error) {
	now := s.now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	dayID, err := tx.EnsureDay(journal.DateOf(now))
	if err != nil {
		return nil, err
	}
	id, err := tx.InsertNote(body, now, completed, dayID)
	if err != nil {
		return nil, err
	}
	if err := tx.RecountNotes(dayID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("dayservice: commit quick add: %w", err)
	}
	return &journal.Note{ID: id, Body: body, Completed: completed, CreatedAt: now}, nil
}

// Day returns the snapshot for a single calendar day. A day with no
// stored notes still resolves, with an empty note list.
func (s *Service) Day(ctx context.Context, date time.Time) (*journal.DayNotes, error) {
	days, err := s.Range(ctx, date, date)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		// The range walk guarantees one entry per day; this only fires
		// if that guarantee is broken.
		return nil, fmt.Errorf("dayservice: day %s: %w", journal.DateOf(date).Format(journal.DateFormat), apperr.ErrNotFound)
	}
	return &days[0], nil
}

// Range returns one DayNotes per calendar day in [start, end]
// inclusive, in ascending date order. Days with no stored notes are
// fabricated with an empty note list and note_count 0; the result never
// has gaps or duplicates, so its length is always the day span.
func (s *Service) Range(_ context.Context, start, end time.Time) ([]journal.DayNotes, error) {
	start, end = journal.DateOf(start), journal.DateOf(end)
	if end.Before(start) {
		return nil, fmt.Errorf("dayservice: range end %s before start %s",
			end.Format(journal.DateFormat), start.Format(journal.DateFormat))
	}

	rows, err := s.db.NotesBetween(start, end)
	if err != nil {
		return nil, err
	}
	byDate := make(map[time.Time][]journal.Note)
	for _, r := range rows {
		d := journal.DateOf(r.Date)
		byDate[d] = append(byDate[d], journal.Note{
			ID:        r.ID,
			Body:      r.Body,
			Completed: r.Completed,
			CreatedAt: r.CreatedAt,
		})
	}

	dayRows, err := s.db.DaysBetween(start, end)
	if err != nil {
		return nil, err
	}
	texts := make(map[time.Time]string, len(dayRows))
	for _, d := range dayRows {
		texts[journal.DateOf(d.Date)] = d.DayText
	}

	var out []journal.DayNotes
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		notes := byDate[d]
		if notes == nil {
			notes = []journal.Note{}
		}
		out = append(out, journal.DayNotes{
			Date:      d,
			Notes:     notes,
			NoteCount: len(notes),
			DayText:   texts[d],
		})
	}
	return out, nil
}
