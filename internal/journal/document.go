package journal

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the calendar-date spelling used in day headers and
// export file names.
const DateFormat = "2006-01-02"

const (
	headerToday = "# Today: "
	headerDay   = "# Day: "
	terminator  = "---"
)

// Document is a parsed day document: the user's edited intent for one
// calendar day. It is consumed exactly once by the reconciler.
type Document struct {
	Date      time.Time
	Intents   []NoteIntent
	DayText   string
	NoteCount int
}

// DayNotes is the authoritative snapshot of one day: alive notes in
// created_at order plus the day's free text.
type DayNotes struct {
	Date      time.Time `json:"date"`
	Notes     []Note    `json:"notes"`
	NoteCount int       `json:"note_count"`
	DayText   string    `json:"day_text"`
}

// DateOf truncates t to its UTC calendar day. All date handling in the
// module goes through this so there is a single timezone policy.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// A Parser consumes day blocks from a buffer of one or more
// concatenated day documents. Each call to Next consumes one day up to
// and including its "---" terminator.
type Parser struct {
	lines []string
	pos   int
	now   time.Time
}

// NewParser creates a parser over buf. now stamps new-note intents and
// nothing else; header spellings parse identically regardless of it.
func NewParser(buf string, now time.Time) *Parser {
	return &Parser{lines: strings.Split(buf, "\n"), now: now}
}

// More skips blank lines and reports whether any content remains.
func (p *Parser) More() bool {
	for p.pos < len(p.lines) {
		if strings.TrimSpace(p.lines[p.pos]) != "" {
			return true
		}
		p.pos++
	}
	return false
}

// Next parses the next day block. A parse error on any line aborts the
// whole block: a malformed note line invalidates the entire edit.
func (p *Parser) Next() (*Document, error) {
	date, err := p.header()
	if err != nil {
		return nil, err
	}

	doc := &Document{Date: date}
	var freeText strings.Builder
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case trimmed == terminator:
			// Consumed, not emitted: the cursor now sits on the next
			// day's block (if any).
			doc.DayText = freeText.String()
			doc.NoteCount = len(doc.Intents)
			return doc, nil
		case strings.HasPrefix(trimmed, "-"):
			intent, err := ParseNoteLine(line, p.now)
			if err != nil {
				return nil, err
			}
			if intent != nil {
				doc.Intents = append(doc.Intents, intent)
			}
		default:
			freeText.WriteString(line)
			freeText.WriteByte('\n')
		}
	}
	doc.DayText = freeText.String()
	doc.NoteCount = len(doc.Intents)
	return doc, nil
}

// header skips blank lines and parses the day header.
func (p *Parser) header() (time.Time, error) {
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		p.pos++
		if line == "" {
			continue
		}
		ds, ok := strings.CutPrefix(line, headerToday)
		if !ok {
			ds, ok = strings.CutPrefix(line, headerDay)
		}
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMissingHeader, line)
		}
		date, err := time.ParseInLocation(DateFormat, strings.TrimSpace(ds), time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, strings.TrimSpace(ds))
		}
		return date, nil
	}
	return time.Time{}, ErrMissingHeader
}

// ParseDocument parses a buffer holding exactly one day document.
func ParseDocument(buf string, now time.Time) (*Document, error) {
	return NewParser(buf, now).Next()
}

// ParseDocuments parses every day block in buf, in order.
func ParseDocuments(buf string, now time.Time) ([]Document, error) {
	p := NewParser(buf, now)
	var docs []Document
	for p.More() {
		doc, err := p.Next()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if len(docs) == 0 {
		return nil, ErrMissingHeader
	}
	return docs, nil
}

// Markdown renders the day for display or editing. The header reads
// "Today" when the date is now's UTC calendar day and "Day" otherwise;
// both spellings parse identically. When editable is true the output
// ends with a "---" terminator so several days can be concatenated in
// one buffer and round-tripped.
func (d DayNotes) Markdown(now time.Time, editable bool) string {
	prefix := "Day"
	if d.Date.Equal(DateOf(now)) {
		prefix = "Today"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", prefix, d.Date.Format(DateFormat))
	for _, n := range d.Notes {
		b.WriteString(n.Line())
		b.WriteByte('\n')
	}
	b.WriteString(EmptySlot)
	b.WriteString("\n\n")
	b.WriteString(d.DayText)
	if d.DayText != "" && !strings.HasSuffix(d.DayText, "\n") {
		b.WriteByte('\n')
	}
	if editable {
		b.WriteString(terminator)
		b.WriteByte('\n')
	}
	return b.String()
}
