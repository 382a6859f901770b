package config

import (
	"strings"
	"time"
)

const (
	defaultOAuthTimeout = 5 * time.Minute
	minOAuthTimeout     = 10 * time.Second
)

// ProviderConfig configures one social provider.
type ProviderConfig struct {
	Enabled  bool   `env:"ENABLED"   envDefault:"true"`
	ClientID string `env:"CLIENT_ID"`
	// ClientSecret is only used by Google's token refresh; installed-app clients leave it empty.
	ClientSecret string `env:"CLIENT_SECRET"`
	// PreferWeb makes the browser flow primary even when a native SDK is available.
	PreferWeb bool `env:"PREFER_WEB" envDefault:"false"`
	// VerifyIDToken checks ID tokens against the provider's OIDC keys before exchange.
	VerifyIDToken bool `env:"VERIFY_ID_TOKEN" envDefault:"false"`
	// Fallback retries a failed native login through the browser (LINE only).
	Fallback bool `env:"FALLBACK" envDefault:"false"`
	// AuthURL overrides the authorization endpoint.
	AuthURL string `env:"AUTH_URL"`
	// Issuer overrides the OIDC issuer used for ID token verification.
	Issuer string `env:"ISSUER"`
}

func (p *ProviderConfig) sanitize() {
	p.ClientID = strings.TrimSpace(p.ClientID)
	p.ClientSecret = strings.TrimSpace(p.ClientSecret)
	p.AuthURL = strings.TrimSpace(p.AuthURL)
	p.Issuer = strings.TrimSpace(p.Issuer)
}

// ProvidersConfig groups per-provider configuration.
type ProvidersConfig struct {
	Line     ProviderConfig `envPrefix:"LINE_"`
	Facebook ProviderConfig `envPrefix:"FACEBOOK_"`
	Google   ProviderConfig `envPrefix:"GOOGLE_"`
	Apple    ProviderConfig `envPrefix:"APPLE_"`

	// OAuthTimeout bounds how long a browser flow waits for its callback.
	OAuthTimeout time.Duration `env:"OAUTH_TIMEOUT" envDefault:"5m"`
}

// Sanitize trims values and clamps the OAuth timeout.
func (c *ProvidersConfig) Sanitize() {
	for _, p := range c.all() {
		p.sanitize()
	}
	if c.OAuthTimeout <= 0 {
		c.OAuthTimeout = defaultOAuthTimeout
	}
	if c.OAuthTimeout < minOAuthTimeout {
		c.OAuthTimeout = minOAuthTimeout
	}
}

func (c *ProvidersConfig) disableUnconfigured() {
	for _, p := range c.all() {
		if p.ClientID == "" {
			p.Enabled = false
		}
	}
}

func (c *ProvidersConfig) all() map[string]*ProviderConfig {
	return map[string]*ProviderConfig{
		"line":     &c.Line,
		"facebook": &c.Facebook,
		"google":   &c.Google,
		"apple":    &c.Apple,
	}
}

// Get returns the configuration for a provider tag such as "line".
func (c ProvidersConfig) Get(name string) (ProviderConfig, bool) {
	p, ok := c.all()[strings.ToLower(name)]
	if !ok {
		return ProviderConfig{}, false
	}
	return *p, true
}
