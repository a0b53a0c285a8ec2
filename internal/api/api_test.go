package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/testutil"
)

// testEnv sets up a temp DB, service, and router. An empty token means
// auth disabled.
func testEnv(t *testing.T, authToken string) (*dayservice.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	svc := dayservice.New(db)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doc(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestSyncAndGetDay(t *testing.T) {
	_, router := testEnv(t, "")

	body := doc(
		"# Day: 2025-10-12",
		"",
		" - [ ] :buy milk",
		" - [x] :call dentist",
		"",
		"quiet day",
		"---",
	)
	req := httptest.NewRequest(http.MethodPut, "/days/2025-10-12", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/days/2025-10-12", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var day journal.DayNotes
	_ = json.Unmarshal(w.Body.Bytes(), &day)
	if day.NoteCount != 2 || len(day.Notes) != 2 {
		t.Errorf("day = %+v, want 2 notes", day)
	}
	if day.DayText != "quiet day\n" {
		t.Errorf("day text = %q", day.DayText)
	}
}

func TestSyncDay_MalformedLineReturns400WithLine(t *testing.T) {
	_, router := testEnv(t, "")

	body := doc("# Day: 2025-10-12", "-[] broken line")
	req := httptest.NewRequest(http.MethodPut, "/days/2025-10-12", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "-[] broken line") {
		t.Errorf("response should carry the offending line: %s", w.Body.String())
	}
}

func TestSyncDay_UnknownIDReturns404(t *testing.T) {
	_, router := testEnv(t, "")

	body := doc("# Day: 2025-10-12", " - [ ] :999: ghost")
	req := httptest.NewRequest(http.MethodPut, "/days/2025-10-12", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestSyncDay_HeaderDateMismatch(t *testing.T) {
	_, router := testEnv(t, "")

	body := doc("# Day: 2025-10-11", " - [ ] :")
	req := httptest.NewRequest(http.MethodPut, "/days/2025-10-12", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetRange_GapFree(t *testing.T) {
	svc, router := testEnv(t, "")
	testutil.SeedDay(t, svc, mustDate(t, "2025-10-14"), "midweek note")

	req := httptest.NewRequest(http.MethodGet, "/days?start=2025-10-12&end=2025-10-18", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp RangeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(resp.Days))
	}
	for i, d := range resp.Days {
		wantCount := 0
		if i == 2 {
			wantCount = 1
		}
		if d.NoteCount != wantCount {
			t.Errorf("day %d count = %d, want %d", i, d.NoteCount, wantCount)
		}
	}
}

func TestGetRange_BadParams(t *testing.T) {
	_, router := testEnv(t, "")
	for _, url := range []string{
		"/days",
		"/days?start=2025-10-12",
		"/days?start=2025-10-12&end=bogus",
		"/days?start=2025-10-12&end=2025-10-10",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, w.Code)
		}
	}
}

func TestCreateNote(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(CreateNoteRequest{Body: "quick one"})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var note journal.Note
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.ID == 0 || note.Body != "quick one" {
		t.Errorf("note = %+v", note)
	}
}

func TestCreateNote_EmptyBody(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"body":""}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetDayDocument(t *testing.T) {
	svc, router := testEnv(t, "")
	testutil.SeedDay(t, svc, mustDate(t, "2025-10-12"), "pack bags")

	req := httptest.NewRequest(http.MethodGet, "/days/2025-10-12/document", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := w.Body.String()
	if !strings.Contains(out, "pack bags") || !strings.HasSuffix(out, "---\n") {
		t.Errorf("document = %q", out)
	}
	// The document must be re-parseable.
	if _, err := journal.ParseDocument(out, mustDate(t, "2025-10-12")); err != nil {
		t.Errorf("served document does not parse: %v", err)
	}
}

func TestAuth_TokenMode(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/days/2025-10-12", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/days/2025-10-12", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/days/2025-10-12", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token: status = %d, want 200", w.Code)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(journal.DateFormat, s, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
