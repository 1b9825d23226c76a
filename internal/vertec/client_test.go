package vertec

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchProjects(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer static-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/xml" {
			t.Errorf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `<Envelope><Body><QueryResponse>
			<Projekt><code>ACME-01</code><objid>100</objid></Projekt>
			<Projekt><code>ACME-02</code><objid>101</objid></Projekt>
		</QueryResponse></Body></Envelope>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "static-token", "4242", 5*time.Second, nil)
	projects, err := c.FetchProjects(context.Background())
	if err != nil {
		t.Fatalf("FetchProjects: %v", err)
	}

	if !strings.Contains(gotBody, "<ocl>projekt->select(code.sqlLike('%%'))->select(aktiv)</ocl>") {
		t.Errorf("query body missing project selection: %q", gotBody)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}
	if projects[0] != (Project{ObjID: "100", Code: "ACME-01"}) {
		t.Errorf("first project = %+v", projects[0])
	}
	if projects[1] != (Project{ObjID: "101", Code: "ACME-02"}) {
		t.Errorf("second project = %+v", projects[1])
	}
}

func TestFetchEntries(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `<Envelope><Body><QueryResponse>
			<OffeneLeistung>
				<datum>2024-12-02</datum>
				<projekt><objref>555</objref></projekt>
				<phase><objref>556</objref></phase>
				<text>Code review</text>
				<wertext>120.00</wertext>
				<objid>9001</objid>
			</OffeneLeistung>
		</QueryResponse></Body></Envelope>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "static-token", "4242", 5*time.Second, nil)
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local)
	entries, err := c.FetchEntries(context.Background(), start, end)
	if err != nil {
		t.Fatalf("FetchEntries: %v", err)
	}

	for _, want := range []string{
		"<objref>4242</objref>",
		"<ocl>offeneleistungen</ocl>",
		"<sqlwhere>datum between '2024-12-01' and '2024-12-31'</sqlwhere>",
		"<sqlorder>bold_id</sqlorder>",
	} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("query body missing %q: %q", want, gotBody)
		}
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	want := Entry{
		ObjID:   "9001",
		Datum:   "2024-12-02",
		Projekt: ObjectRef{ID: "555"},
		Phase:   ObjectRef{ID: "556"},
		Text:    "Code review",
		WertExt: "120.00",
	}
	if entries[0] != want {
		t.Errorf("entry = %+v, want %+v", entries[0], want)
	}
}

func TestFetchProjectsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream gone")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "static-token", "4242", 5*time.Second, nil)
	_, err := c.FetchProjects(context.Background())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want TransportError", err)
	}
	if te.Status != http.StatusBadGateway || !strings.Contains(te.Body, "upstream gone") {
		t.Errorf("TransportError = %+v", te)
	}
}

func TestFetchEntriesProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<Envelope><Body><Info>nothing here</Info></Body></Envelope>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "static-token", "4242", 5*time.Second, nil)
	_, err := c.FetchEntries(context.Background(), time.Now(), time.Now())

	var pfe *ProtocolFormatError
	if !errors.As(err, &pfe) {
		t.Fatalf("got %v, want ProtocolFormatError", err)
	}
}
