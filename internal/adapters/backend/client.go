// Package backend talks to the application backend's social-login endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	// DefaultErrorMessagePath extracts a human message from common backend error shapes.
	DefaultErrorMessagePath = "message || detail || error.message"
	// DefaultTimeout bounds each backend request.
	DefaultTimeout = 30 * time.Second

	loginPath   = "/auth/social/login"
	refreshPath = "/auth/refresh"

	maxBodyBytes = 1 << 20
)

// Config configures a backend Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; its Jar is left untouched.
	HTTPClient *http.Client
	// Limiter throttles outbound calls; nil disables throttling.
	Limiter *rate.Limiter
	// ErrorMessagePath is a JMESPath expression evaluated against JSON error bodies.
	ErrorMessagePath string
	UserAgent        string
	Logger           *slog.Logger
}

// HTTPError is returned for non-2xx backend responses.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// BackendMessage returns the message extracted from the error body, if any.
func (e *HTTPError) BackendMessage() string { return e.Message }

// Client implements ports.TokenExchanger over HTTP+JSON.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	msgPath   string
	userAgent string
	logger    *slog.Logger
}

var _ ports.TokenExchanger = (*Client)(nil)

// NewClient validates cfg and builds a client with a public-suffix-aware cookie jar.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend: base URL is required")
	}
	msgPath := cfg.ErrorMessagePath
	if msgPath == "" {
		msgPath = DefaultErrorMessagePath
	}
	if _, err := jmespath.Compile(msgPath); err != nil {
		return nil, fmt.Errorf("backend: invalid error message path: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("backend: create cookie jar: %w", err)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "socialauth/1"
	}
	return &Client{
		baseURL:   base,
		http:      hc,
		limiter:   cfg.Limiter,
		msgPath:   msgPath,
		userAgent: ua,
		logger:    logger.With("component", "backend"),
	}, nil
}

// Exchange trades a provider token for an application session.
func (c *Client) Exchange(ctx context.Context, req ports.ExchangeRequest) (domainauth.BackendAuthResponse, error) {
	var out domainauth.BackendAuthResponse
	if err := c.post(ctx, loginPath, req, &out); err != nil {
		return domainauth.BackendAuthResponse{}, err
	}
	if out.AppToken == "" {
		return domainauth.BackendAuthResponse{}, errors.New("backend response missing appToken")
	}
	return out, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh obtains a new app token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domainauth.RefreshResponse, error) {
	var out domainauth.RefreshResponse
	if err := c.post(ctx, refreshPath, refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return domainauth.RefreshResponse{}, err
	}
	if out.AppToken == "" {
		return domainauth.RefreshResponse{}, errors.New("backend response missing appToken")
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("backend call", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Message: c.extractMessage(raw), Body: raw}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage evaluates the message expression against a JSON error body.
// Non-JSON bodies yield their trimmed text when short.
func (c *Client) extractMessage(raw []byte) string {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		text := strings.TrimSpace(string(raw))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	v, err := jmespath.Search(c.msgPath, doc)
	if err != nil {
		return ""
	}
	switch m := v.(type) {
	case string:
		return m
	case nil:
		return ""
	default:
		// FastAPI validation errors put a list under detail.
		b, err := json.Marshal(m)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
