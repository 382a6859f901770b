package config

import (
	"net"
	"strings"
	"time"
)

// HTTPConfig contains loopback HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to. Keep it on loopback;
	// the API is unauthenticated.
	Addr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8765"`

	// ReadTimeout bounds reading a request. Login requests block for the whole
	// OAuth flow, so WriteTimeout is derived from the OAuth timeout when unset.
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"30s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT"  envDefault:"120s"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr = strings.TrimSpace(h.Addr); h.Addr == "" {
		h.Addr = "127.0.0.1:8765"
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 30 * time.Second
	}
	if h.WriteTimeout < 0 {
		h.WriteTimeout = 0
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// IsLoopback reports whether Addr binds only to a loopback interface.
func (h *HTTPConfig) IsLoopback() bool {
	host, _, err := net.SplitHostPort(h.Addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// BaseURL returns the http URL clients use to reach the server.
func (h *HTTPConfig) BaseURL() string {
	host, port, err := net.SplitHostPort(h.Addr)
	if err != nil {
		return "http://" + h.Addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
