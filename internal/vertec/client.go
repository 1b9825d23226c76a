package vertec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	projectClass = "Projekt"
	entryClass   = "OffeneLeistung"
)

// Client queries the Vertec object store over its XML protocol. It uses a
// static pre-configured bearer token and holds no mutable state, so it is
// safe for concurrent use.
type Client struct {
	apiURL     string
	token      string
	employeeID string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Vertec client. employeeID is the objref of the employee
// whose open entries FetchEntries selects.
func NewClient(apiURL, token, employeeID string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL:     apiURL,
		token:      token,
		employeeID: employeeID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) query(ctx context.Context, queryXML string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(queryXML))
	if err != nil {
		return nil, fmt.Errorf("creating vertec request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/xml")

	c.logger.Debug("vertec query", "bytes", len(queryXML))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending vertec query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading vertec response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("vertec query failed", "status", resp.StatusCode, "response", truncate(string(body), 200))
		return nil, &TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("vertec response", "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

// FetchProjects returns all active projects, in document order.
func (c *Client) FetchProjects(ctx context.Context) ([]Project, error) {
	resultdef := []string{"code"}
	queryXML := BuildQuery([]Selector{
		{Name: "ocl", Value: "projekt->select(code.sqlLike('%%'))->select(aktiv)"},
	}, resultdef)

	body, err := c.query(ctx, queryXML)
	if err != nil {
		c.logger.Error("fetching vertec projects", "error", err)
		return nil, err
	}

	// objid is merged into every result by the store whether or not it is
	// requested; it keys the record.
	records, err := ParseResponse(body, projectClass, append(resultdef, "objid"))
	if err != nil {
		c.logger.Error("parsing vertec projects", "error", err)
		return nil, err
	}

	projects := make([]Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, Project{
			ObjID: rec["objid"].Text,
			Code:  rec["code"].Text,
		})
	}
	return projects, nil
}

// FetchEntries returns the employee's open (unbilled) entries with dates in
// [start, end], ordered by the store's stable bold_id.
func (c *Client) FetchEntries(ctx context.Context, start, end time.Time) ([]Entry, error) {
	resultdef := []string{"datum", "projekt", "phase", "text", "wertext"}
	queryXML := BuildQuery([]Selector{
		{Name: "objref", Value: c.employeeID},
		{Name: "ocl", Value: "offeneleistungen"},
		{Name: "sqlwhere", Value: fmt.Sprintf("datum between '%s' and '%s'",
			start.Format("2006-01-02"), end.Format("2006-01-02"))},
		{Name: "sqlorder", Value: "bold_id"},
	}, resultdef)

	body, err := c.query(ctx, queryXML)
	if err != nil {
		c.logger.Error("fetching vertec entries", "error", err)
		return nil, err
	}

	records, err := ParseResponse(body, entryClass, append(resultdef, "objid"))
	if err != nil {
		c.logger.Error("parsing vertec entries", "error", err)
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			ObjID:   rec["objid"].Text,
			Datum:   rec["datum"].Text,
			Projekt: ObjectRef{ID: rec["projekt"].Ref},
			Phase:   ObjectRef{ID: rec["phase"].Ref},
			Text:    rec["text"].Text,
			WertExt: rec["wertext"].Text,
		})
	}
	return entries, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
