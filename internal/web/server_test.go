package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nwirth/vertime/internal/timeular"
	"github.com/nwirth/vertime/internal/vertec"
)

type fakeEntries struct {
	entries []timeular.TimeEntry
	err     error
	lastDay time.Time
}

func (f *fakeEntries) FetchEntries(ctx context.Context, day time.Time) ([]timeular.TimeEntry, error) {
	f.lastDay = day
	return f.entries, f.err
}

type fakeProjects struct {
	projects []vertec.Project
	err      error
}

func (f *fakeProjects) FetchProjects(ctx context.Context) ([]vertec.Project, error) {
	return f.projects, f.err
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestDashboardRendersEntriesAndProjects(t *testing.T) {
	entries := &fakeEntries{entries: []timeular.TimeEntry{{
		ID: "17",
		Duration: timeular.Duration{
			StartedAt: "2024-12-01T08:30:00.000",
			StoppedAt: "2024-12-01T09:15:00.000",
		},
		Note: timeular.Note{Text: "sprint planning"},
	}}}
	projects := &fakeProjects{projects: []vertec.Project{
		{ObjID: "100", Code: "ACME-01"},
		{ObjID: "101", Code: "ACME-02"},
	}}

	w := get(t, NewServer(entries, projects, nil), "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`value="sprint planning"`,
		`value="08:30:00.000"`,
		`value="09:15:00.000"`,
		`entries[17][description]`,
		`"ACME-01"`,
		`"objid":"100"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestDashboardUpstreamFailure(t *testing.T) {
	entries := &fakeEntries{err: errors.New("timeular down")}
	projects := &fakeProjects{}

	w := get(t, NewServer(entries, projects, nil), "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to load entries") {
		t.Errorf("body = %q, want generic failure message", w.Body.String())
	}
}

func TestDashboardProjectsFailure(t *testing.T) {
	entries := &fakeEntries{}
	projects := &fakeProjects{err: &vertec.ProtocolFormatError{Missing: "QueryResponse"}}

	w := get(t, NewServer(entries, projects, nil), "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestDashboardDaySelector(t *testing.T) {
	entries := &fakeEntries{}
	projects := &fakeProjects{}
	s := NewServer(entries, projects, nil)

	w := get(t, s, "/?day=2024-12-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := entries.lastDay.Format("2006-01-02"); got != "2024-12-01" {
		t.Errorf("day = %s, want 2024-12-01", got)
	}

	w = get(t, s, "/?day=yesterday")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	wantDay := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if got := entries.lastDay.Format("2006-01-02"); got != wantDay {
		t.Errorf("day = %s, want %s", got, wantDay)
	}

	w = get(t, s, "/?day=splorf")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unparseable day", w.Code)
	}
}

func TestStylesheetRoute(t *testing.T) {
	w := get(t, NewServer(&fakeEntries{}, &fakeProjects{}, nil), "/styles.css")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/css") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestHealthz(t *testing.T) {
	w := get(t, NewServer(&fakeEntries{}, &fakeProjects{}, nil), "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	w := get(t, NewServer(&fakeEntries{}, &fakeProjects{}, nil), "/submit")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
