package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	httpx "github.com/yoii-livecomm/socialauth/internal/http"
)

// apiClient talks to a running daemon's loopback API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	// Requests carry their own deadlines; login blocks for a whole browser flow.
	return &apiClient{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{}}
}

// apiError is a non-2xx daemon response.
type apiError struct {
	Status int
	Body   httpx.ErrorBody
}

func (e *apiError) Error() string {
	msg := e.Body.UserMessage
	if msg == "" {
		msg = e.Body.Message
	}
	if e.Body.Code == "" {
		return fmt.Sprintf("daemon returned %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Body.Code, msg)
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out. It
// returns the status so callers can tell 200 from 204.
func (c *apiClient) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reach daemon at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, &apiErr.Body)
		return resp.StatusCode, apiErr
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
