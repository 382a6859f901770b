package config

import (
	"os"
	"strings"
)

// DefaultAppScheme is the deep-link scheme the OS forwards OAuth re-entries on.
const DefaultAppScheme = "yoii-livecomm"

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - providers.go: per-provider login configuration
//   - backend.go: backend token-exchange client
//   - session.go: session store driver, Redis and Postgres
//   - http.go: loopback HTTP server configuration
//   - observability.go: metrics sinks
type AppConfig struct {
	// IsDev swaps native SDKs for deterministic in-process stand-ins.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// AppScheme is the custom URL scheme redirect URIs are built on.
	AppScheme string `env:"APP_SCHEME" envDefault:"yoii-livecomm"`

	Providers ProvidersConfig
	Backend   BackendConfig `envPrefix:"BACKEND_"`
	Session   SessionConfig
	HTTP      HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.AppScheme = strings.TrimSuffix(strings.TrimSpace(c.AppScheme), "://")
	if c.AppScheme == "" {
		c.AppScheme = DefaultAppScheme
	}

	c.Providers.Sanitize()
	if !c.IsDev {
		// Outside dev mode a provider cannot log in without a client id.
		c.Providers.disableUnconfigured()
	}
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
