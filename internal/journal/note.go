// Package journal defines the daily-note domain types and the text
// format used to edit them. Parsing and rendering are pure; persistence
// lives in the store and dayservice packages.
package journal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse error kinds. Wrapped errors carry the offending text for
// diagnostics; match with errors.Is.
var (
	ErrMalformedLine = errors.New("journal: malformed note line")
	ErrMalformedID   = errors.New("journal: malformed note id")
	ErrMissingHeader = errors.New("journal: no day header found")
	ErrInvalidDate   = errors.New("journal: invalid date in day header")
)

// The only two legal checkbox spellings. The colon is part of the
// prefix: everything after it is the id/body segment.
const (
	openPrefix = "- [ ] :"
	donePrefix = "- [x] :"
)

// EmptySlot is the unoccupied new-note line appended to every rendered
// document. It parses to a no-op and is never persisted.
const EmptySlot = " - [ ] :"

// Note is a persisted checklist item with a stable id.
type Note struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Line renders the note as a single editable line.
func (n Note) Line() string {
	tick := " "
	if n.Completed {
		tick = "x"
	}
	return fmt.Sprintf(" - [%s] :%d: %s", tick, n.ID, n.Body)
}

// NoteIntent is the parsed meaning of one note line: either an update
// to an existing note or a request for a fresh one. Lines that carry no
// content (the empty slot, or an id with an empty body) yield a nil
// intent and no error.
type NoteIntent interface {
	noteIntent()
}

// UpdateNote references an existing note by id.
type UpdateNote struct {
	ID        int64
	Body      string
	Completed bool
}

// AddNote requests a fresh note, stamped at parse time.
type AddNote struct {
	Body      string
	Completed bool
	CreatedAt time.Time
}

func (UpdateNote) noteIntent() {}
func (AddNote) noteIntent()    {}

// ParseNoteLine parses one note line into an intent. now stamps AddNote
// intents. The codec never consults storage: whether the id actually
// exists is the reconciler's problem.
func ParseNoteLine(line string, now time.Time) (NoteIntent, error) {
	s := strings.TrimSpace(line)

	var completed bool
	switch {
	case strings.HasPrefix(s, openPrefix):
	case strings.HasPrefix(s, donePrefix):
		completed = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	rest := s[len(openPrefix):]
	idField, body, hasID := strings.Cut(rest, ":")
	if !hasID {
		// No second separator: the whole remainder is the body of a
		// new note. An empty body is the blank slot.
		b := strings.TrimSpace(rest)
		if b == "" {
			return nil, nil
		}
		return AddNote{Body: b, Completed: completed, CreatedAt: now}, nil
	}

	idText := strings.TrimSpace(idField)
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || id < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedID, idText)
	}
	b := strings.TrimSpace(body)
	if b == "" {
		// Valid id but nothing to say: leave the note untouched.
		return nil, nil
	}
	return UpdateNote{ID: id, Body: b, Completed: completed}, nil
}
