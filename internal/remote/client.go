// Package remote provides the HTTP client for the code execution service.
// The service is treated as unversioned: its supported-language list may
// drift between sessions, which the catalog detects and reconciles.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request to the execution service.
const DefaultTimeout = 30 * time.Second

// ExecRequest is one code execution submission.
type ExecRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin,omitempty"`
}

// ExecResult is the service's response to an execution.
type ExecResult struct {
	Stdout     string `json:"stdout"`
	ExitStatus int    `json:"exit_status"`
}

// Client talks to the execution service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the service endpoint, without a trailing slash.
	BaseURL string
	// Timeout bounds each request (optional, defaults to DefaultTimeout).
	Timeout time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// NewClient creates an execution service client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ListLanguages fetches the service's full supported-language list.
func (c *Client) ListLanguages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch languages: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status listing languages: %d", resp.StatusCode)
	}

	var languages []string
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		return nil, fmt.Errorf("failed to decode language list: %w", err)
	}

	c.logger.Debug("fetched language list", slog.Int("count", len(languages)))
	return languages, nil
}

// Execute submits code to the service and returns its stdout and exit
// status unchanged. No retries are performed; any transport or service
// error propagates to the caller.
func (c *Client) Execute(ctx context.Context, execReq ExecRequest) (*ExecResult, error) {
	body, err := json.Marshal(execReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("executing code",
		slog.String("language", execReq.Language), slog.Int("bytes", len(execReq.Code)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execution request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("execution failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result ExecResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode execution result: %w", err)
	}

	return &result, nil
}
