package config

import (
	"strings"
	"time"
)

// BackendConfig configures the backend token-exchange client.
type BackendConfig struct {
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api/v1"`
	Timeout    time.Duration `env:"TIMEOUT"      envDefault:"30s"`
	// RateLimit is the sustained outbound request rate per second; 0 disables limiting.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"RATE_BURST" envDefault:"5"`
	// ErrorMessagePath is a JMESPath expression locating the message in error bodies.
	ErrorMessagePath string `env:"ERROR_MESSAGE_PATH"`
	UserAgent        string `env:"USER_AGENT"         envDefault:"socialauth/1"`
}

// Sanitize applies guardrails to backend client values.
func (c *BackendConfig) Sanitize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.ErrorMessagePath = strings.TrimSpace(c.ErrorMessagePath)
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateBurst < 1 {
		c.RateBurst = 1
	}
}

// RateLimited reports whether outbound calls should be throttled.
func (c *BackendConfig) RateLimited() bool {
	return c.RateLimit > 0
}
