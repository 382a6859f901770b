package auth

// Package auth contains domain-level types for social authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// SocialProvider identifies a third-party identity service.
// Keep string form for easy persistence and map keys.
type SocialProvider string

const (
	ProviderLine     SocialProvider = "line"
	ProviderFacebook SocialProvider = "facebook"
	ProviderGoogle   SocialProvider = "google"
	ProviderApple    SocialProvider = "apple"
)

// AllProviders returns every provider the application knows about.
func AllProviders() []SocialProvider {
	return []SocialProvider{ProviderLine, ProviderFacebook, ProviderGoogle, ProviderApple}
}

// Valid reports whether p is one of the known providers.
func (p SocialProvider) Valid() bool {
	switch p {
	case ProviderLine, ProviderFacebook, ProviderGoogle, ProviderApple:
		return true
	default:
		return false
	}
}

func (p SocialProvider) String() string { return string(p) }

// ParseProvider converts a tag into a SocialProvider, rejecting unknown values.
func ParseProvider(s string) (SocialProvider, error) {
	p := SocialProvider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown social provider %q", s)
	}
	return p, nil
}

// AuthMethod records which path produced a login result.
type AuthMethod string

const (
	MethodNative AuthMethod = "native" // in-app SDK flow
	MethodWeb    AuthMethod = "web"    // system-browser redirect flow
)

// AuthToken is the credential bundle returned by a provider.
// Only AccessToken is guaranteed; providers vary on the rest.
type AuthToken struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitzero"`
	IDToken      string    `json:"idToken,omitempty"`
}

// ExpiresAtMillis returns ExpiresAt as epoch milliseconds, or 0 when unknown.
func (t AuthToken) ExpiresAtMillis() int64 {
	if t.ExpiresAt.IsZero() {
		return 0
	}
	return t.ExpiresAt.UnixMilli()
}

// Expired reports whether the token has a known expiry that is not after now.
func (t AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// ExpiresIn converts a provider-supplied relative lifetime into an absolute expiry.
// Non-positive lifetimes yield the zero time.
func ExpiresIn(now time.Time, seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(seconds) * time.Second)
}

// SocialAuthResult is the output of a successful provider-level login.
// RawResponse is provider-specific and kept for diagnostics only.
type SocialAuthResult struct {
	Provider    SocialProvider
	Token       AuthToken
	Method      AuthMethod
	RawResponse any
}

// UserProfile is the identity as known by the application backend after exchange.
type UserProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// BackendAuthResponse is the application session issued by the backend.
// AppToken is what the rest of the app uses for authenticated API calls.
type BackendAuthResponse struct {
	User         UserProfile `json:"user"`
	AppToken     string      `json:"appToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// RefreshResponse is the backend payload for an app token refresh.
// RefreshToken is set only when the backend rotates it.
type RefreshResponse struct {
	AppToken     string `json:"appToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// IDClaims are the verified claims of an OpenID Connect ID token.
type IDClaims struct {
	Issuer  string
	Subject string
	Email   string
	Name    string
	Picture string
	Nonce   string
}
