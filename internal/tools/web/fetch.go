// Package web implements the web page fetch tool.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Black-Lioness/toyagent/internal/agent"
)

const userAgent = "toyagent/1.0"

// FetchConfig controls fetch defaults.
type FetchConfig struct {
	// DefaultTimeout applies when a call omits timeout_seconds.
	DefaultTimeout time.Duration

	// MaxBodyBytes caps the downloaded body size.
	MaxBodyBytes int

	// Client overrides the HTTP client (useful for tests).
	Client *http.Client
}

// FetchTool retrieves the text content of a URL. Only http and https
// schemes are accepted.
type FetchTool struct {
	client         *http.Client
	defaultTimeout time.Duration
	maxBody        int
}

// NewFetchTool creates a fetch tool with defaults applied.
func NewFetchTool(cfg FetchConfig) *FetchTool {
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &FetchTool{
		client:         client,
		defaultTimeout: timeout,
		maxBody:        maxBody,
	}
}

// Name returns the tool name.
func (t *FetchTool) Name() string {
	return "fetch_web_page"
}

// Description returns the tool description.
func (t *FetchTool) Description() string {
	return "Fetches the text content of a given URL. Requires user approval."
}

// Schema returns the JSON schema for the tool parameters.
func (t *FetchTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "The URL to fetch (must include http:// or https://).",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Optional timeout in seconds.",
				"default":     int(t.defaultTimeout / time.Second),
			},
		},
		"required": []string{"url"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Execute fetches the URL and returns the body text and status code. A
// 4xx or 5xx response reports the status in both fields with no content.
func (t *FetchTool) Execute(ctx context.Context, args map[string]any) (agent.Envelope, error) {
	var input struct {
		URL            string `json:"url"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	}
	if err := agent.DecodeArgs(args, &input); err != nil {
		return fetchError(nil, fmt.Sprintf("Fetch failed: %v", err)), nil
	}
	if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
		return fetchError(nil, "URL must start with http:// or https://"), nil
	}

	timeout := t.defaultTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, input.URL, nil)
	if err != nil {
		return fetchError(nil, fmt.Sprintf("Fetch failed: %v", err)), nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return fetchError(nil, fmt.Sprintf("Timeout (%ds)", int(timeout/time.Second))), nil
		}
		return fetchError(nil, fmt.Sprintf("Fetch failed: %v", err)), nil
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	if status >= 400 {
		return fetchError(&status, fmt.Sprintf("Fetch failed: %s (Status: %d)", resp.Status, status)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(t.maxBody)))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return fetchError(&status, fmt.Sprintf("Timeout (%ds)", int(timeout/time.Second))), nil
		}
		return fetchError(&status, fmt.Sprintf("Fetch failed: %v", err)), nil
	}

	return agent.Envelope{
		"content":     string(body),
		"status_code": status,
		"error":       nil,
	}, nil
}

func fetchError(status *int, message string) agent.Envelope {
	env := agent.Envelope{
		"content":     nil,
		"status_code": nil,
		"error":       message,
	}
	if status != nil {
		env["status_code"] = *status
	}
	return env
}
