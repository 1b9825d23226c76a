package timeular

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// stampFormat is the timestamp layout Timeular expects in URLs: ISO-8601
// with milliseconds and no trailing zone designator.
const stampFormat = "2006-01-02T15:04:05.000"

// Client talks to the Timeular API. It signs in lazily on first use, keeps
// the bearer token in memory, and re-authenticates once when a request is
// rejected with 401. Safe for concurrent use.
type Client struct {
	apiURL     string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *slog.Logger
	tokens     tokenHolder
}

func NewClient(apiURL, apiKey, apiSecret string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SignIn exchanges the configured API key and secret for a bearer token,
// stores it as the client's current token and returns it. Concurrent callers
// share one sign-in request.
func (c *Client) SignIn(ctx context.Context) (string, error) {
	v, err, _ := c.tokens.flight.Do("sign-in", func() (any, error) {
		return c.doSignIn(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doSignIn(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"apiKey":    c.apiKey,
		"apiSecret": c.apiSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/developer/sign-in", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending sign-in request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("timeular sign-in rejected", "status", resp.StatusCode)
		return "", &AuthError{Status: resp.StatusCode, Reason: "sign-in rejected: " + resp.Status}
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("parsing sign-in response: %w", err)
	}

	c.tokens.set(body.Token)
	c.logger.Debug("timeular sign-in succeeded")
	return body.Token, nil
}

// FetchTodayEntries returns the entries recorded today, local time.
func (c *Client) FetchTodayEntries(ctx context.Context) ([]TimeEntry, error) {
	return c.FetchEntries(ctx, time.Now())
}

// FetchEntries returns the entries recorded on the calendar day containing
// day, local time. It signs in first if no token is held yet, and on a 401
// replaces the token and retries the fetch exactly once; a second 401 fails
// with an AuthError.
func (c *Client) FetchEntries(ctx context.Context, day time.Time) ([]TimeEntry, error) {
	token := c.tokens.current()
	if token == "" {
		c.logger.Debug("no timeular token held, signing in")
		var err error
		if token, err = c.SignIn(ctx); err != nil {
			return nil, err
		}
	}

	// Wall-clock bounds, not start+24h: on DST transition days the local day
	// is not 24 hours long and the end must still be 23:59:59.999.
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999_000_000, day.Location())
	url := fmt.Sprintf("%s/time-entries/%s/%s", c.apiURL, start.Format(stampFormat), end.Format(stampFormat))

	for attempt := 0; ; attempt++ {
		status, body, err := c.get(ctx, url, token)
		if err != nil {
			return nil, err
		}

		if status == http.StatusUnauthorized {
			if attempt >= 1 {
				c.logger.Error("timeular token rejected again after re-authentication")
				return nil, &AuthError{Status: status, Reason: "token rejected after re-authentication"}
			}
			c.logger.Debug("timeular token expired or invalid, re-authenticating")
			if token, err = c.SignIn(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if status < 200 || status >= 300 {
			c.logger.Error("fetching time entries failed", "status", status, "response", truncate(string(body), 200))
			return nil, &TransportError{Status: status, Body: string(body)}
		}

		var parsed struct {
			TimeEntries []TimeEntry `json:"timeEntries"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("parsing time entries response: %w", err)
		}
		c.logger.Debug("time entries fetched", "count", len(parsed.TimeEntries), "day", start.Format("2006-01-02"))
		return parsed.TimeEntries, nil
	}
}

func (c *Client) get(ctx context.Context, url, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
