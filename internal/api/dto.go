package api

import (
	"github.com/starford/dagaz/internal/journal"
)

// DayResponse is the JSON shape of one day snapshot (aliased from the
// domain layer; dates serialize as RFC 3339 UTC midnights).
type DayResponse = journal.DayNotes

// RangeResponse wraps a gap-free day range.
type RangeResponse struct {
	Days []journal.DayNotes `json:"days"`
}

// CreateNoteRequest is the request body for quick-adding a note to
// today.
type CreateNoteRequest struct {
	Body      string `json:"body"`
	Completed bool   `json:"completed"`
}
