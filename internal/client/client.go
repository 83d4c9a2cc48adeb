// Package client provides a GraphQL client for the Evergreen API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every query when the caller sets nothing shorter.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 64 << 20

// Querier executes named queries. The service layer depends on this
// interface so tests can substitute scripted responses.
type Querier interface {
	Execute(ctx context.Context, queryName string, vars map[string]any, result any) error
}

// Recorder receives per-query timing. Implemented by metrics.Collector.
type Recorder interface {
	RecordQuery(query string, duration time.Duration, err error)
}

// Config configures a Client.
type Config struct {
	Endpoint    string
	User        string
	APIKey      string
	BearerToken string
	Timeout     time.Duration
	UserAgent   string
}

// Client is a GraphQL client for Evergreen. It never retries; retry policy
// belongs to the caller.
type Client struct {
	endpoint   string
	headers    http.Header
	timeout    time.Duration
	httpClient *http.Client
	recorder   Recorder
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRecorder records every query's timing and outcome.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. Either a bearer token or both user and API key are required.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("evergreen endpoint is required")
	}
	if cfg.BearerToken == "" && (cfg.User == "" || cfg.APIKey == "") {
		return nil, errors.New("either a bearer token or both user and api key must be provided")
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if cfg.UserAgent != "" {
		headers.Set("User-Agent", cfg.UserAgent)
	}
	if cfg.BearerToken != "" {
		headers.Set("Authorization", "Bearer "+cfg.BearerToken)
	} else {
		headers.Set("Api-User", cfg.User)
		headers.Set("Api-Key", cfg.APIKey)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		endpoint:   cfg.Endpoint,
		headers:    headers,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// graphQLRequest is the request payload for GraphQL operations.
type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the response payload from GraphQL operations.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

// graphQLError represents a GraphQL error.
type graphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e graphQLError) code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Execute runs the named query with vars and decodes the data object into result.
// The call is always bounded by the client timeout; a shorter caller deadline wins.
// Failures are *QueryError values matching ErrNotFound, ErrAuth, ErrTransport or
// ErrInvalidParams.
func (c *Client) Execute(ctx context.Context, queryName string, vars map[string]any, result any) (err error) {
	q, err := lookupQuery(queryName)
	if err != nil {
		return err
	}
	if err := q.validate(vars); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		if c.recorder != nil {
			c.recorder.RecordQuery(queryName, duration, err)
		}
		if err != nil {
			c.logger.Debug("query failed", "query", queryName, "request_id", requestID,
				"duration_ms", duration.Milliseconds(), "error", err)
		} else {
			c.logger.Debug("query completed", "query", queryName, "request_id", requestID,
				"duration_ms", duration.Milliseconds())
		}
	}()

	fail := func(kind error, msg string, cause error) error {
		return &QueryError{Kind: kind, Query: queryName, Identifier: identifierFrom(vars), Message: msg, Err: cause}
	}

	reqBody, err := json.Marshal(graphQLRequest{Query: q.text, OperationName: queryName, Variables: vars})
	if err != nil {
		return fail(ErrInvalidParams, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fail(ErrTransport, "create request", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(ErrTransport, "execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(ErrTransport, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fail(ErrAuth, resp.Status, nil)
	case resp.StatusCode == http.StatusNotFound:
		return fail(ErrNotFound, resp.Status, nil)
	case resp.StatusCode != http.StatusOK:
		return fail(ErrTransport, fmt.Sprintf("server error: %s - %s", resp.Status, truncate(string(body), 200)), nil)
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fail(ErrTransport, "malformed response", err)
	}

	if len(gqlResp.Errors) > 0 {
		return fail(classifyGraphQLErrors(gqlResp.Errors), gqlResp.Errors[0].Message, nil)
	}

	if result != nil {
		if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
			return fail(ErrTransport, "response has no data", nil)
		}
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return fail(ErrTransport, "unmarshal data", err)
		}
	}

	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
