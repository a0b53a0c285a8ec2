package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *dayservice.Service
	broker *sse.Broker // nil when SSE is disabled
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(svc *dayservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// urlDate parses the {date} route parameter.
func urlDate(r *http.Request) (time.Time, error) {
	return time.ParseInLocation(journal.DateFormat, chi.URLParam(r, "date"), time.UTC)
}

// GetDay handles GET /days/{date}.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := urlDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want YYYY-MM-DD"))
		return
	}
	day, err := h.svc.Day(r.Context(), date)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get day failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// GetDayDocument handles GET /days/{date}/document and returns the
// editable markdown form.
func (h *Handler) GetDayDocument(w http.ResponseWriter, r *http.Request) {
	date, err := urlDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want YYYY-MM-DD"))
		return
	}
	day, err := h.svc.Day(r.Context(), date)
	if err != nil {
		slog.Error("get day document failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(day.Markdown(time.Now().UTC(), true)))
}

// SyncDay handles PUT /days/{date}. The request body is the edited
// markdown document; it is parsed and reconciled atomically. A parse
// failure returns 400 carrying the offending line, an unknown note id
// returns 404, and in both cases stored state is untouched.
func (h *Handler) SyncDay(w http.ResponseWriter, r *http.Request) {
	date, err := urlDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, want YYYY-MM-DD"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	doc, err := journal.ParseDocument(string(body), time.Now().UTC())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !doc.Date.Equal(journal.DateOf(date)) {
		writeJSON(w, http.StatusBadRequest, errorBody("document header date does not match URL date"))
		return
	}

	day, err := h.svc.SyncDocument(r.Context(), *doc)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		} else {
			slog.Error("sync day failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if h.broker != nil {
		h.broker.PublishDaySynced(day.Date.Format(journal.DateFormat))
	}
	writeJSON(w, http.StatusOK, day)
}

// GetRange handles GET /days?start=YYYY-MM-DD&end=YYYY-MM-DD. The
// response holds exactly one entry per day in the inclusive range.
func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.ParseInLocation(journal.DateFormat, q.Get("start"), time.UTC)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid start date, want YYYY-MM-DD"))
		return
	}
	end, err := time.ParseInLocation(journal.DateFormat, q.Get("end"), time.UTC)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid end date, want YYYY-MM-DD"))
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, errorBody("end precedes start"))
		return
	}

	days, err := h.svc.Range(r.Context(), start, end)
	if err != nil {
		slog.Error("get range failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, RangeResponse{Days: days})
}

// CreateNote handles POST /notes: quick-add a note to today.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Body == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("body is required"))
		return
	}

	note, err := h.svc.QuickAdd(r.Context(), req.Body, req.Completed)
	if err != nil {
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if h.broker != nil {
		h.broker.PublishNoteCreated(note.ID, journal.DateOf(note.CreatedAt).Format(journal.DateFormat))
	}
	writeJSON(w, http.StatusCreated, note)
}
