// Package ports defines interfaces (hexagonal ports) for social authentication.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
)

// AuthProvider wraps one identity provider's native SDK or browser flow behind a uniform contract.
// Every variant is substitutable; behavioural differences live inside the implementation.
type AuthProvider interface {
	// Provider returns the tag this adapter is registered under.
	Provider() domainauth.SocialProvider

	// PreferredMethod reports which flow Login tries first.
	PreferredMethod() domainauth.AuthMethod

	// Initialize performs idempotent setup; repeated calls after success are no-ops.
	Initialize(ctx context.Context) error

	// Login drives the provider flow to completion, auto-initializing if needed.
	// Failures are *errors.SocialAuthError values carrying the provider.
	Login(ctx context.Context) (domainauth.SocialAuthResult, error)

	// Logout invalidates the provider-side session.
	Logout(ctx context.Context) error

	// IsLoggedIn probes CurrentToken and never fails.
	IsLoggedIn(ctx context.Context) bool

	// CurrentToken returns the last-known-good access token, if any.
	CurrentToken(ctx context.Context) (string, bool)

	// RefreshToken refreshes the provider access token when supported.
	RefreshToken(ctx context.Context) (string, bool)
}

// KeyValue is a single session-store entry used by multi-key writes.
type KeyValue struct {
	Key   string
	Value string
}

// SessionStore is a coarse key-value persistence capability.
// Get reports ok=false for absent keys; err is reserved for storage failures.
type SessionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	MultiSet(ctx context.Context, pairs []KeyValue) error
	MultiRemove(ctx context.Context, keys []string) error
}

// ExchangeRequest is the payload posted to the backend token-exchange endpoint.
type ExchangeRequest struct {
	Provider    domainauth.SocialProvider `json:"provider"`
	AccessToken string                    `json:"accessToken"`
	IDToken     string                    `json:"idToken,omitempty"`
	Method      domainauth.AuthMethod     `json:"method"`
}

// TokenExchanger trades provider tokens for application sessions with the backend.
type TokenExchanger interface {
	Exchange(ctx context.Context, req ExchangeRequest) (domainauth.BackendAuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (domainauth.RefreshResponse, error)
}

// BrowserLauncher opens a URL in the system browser.
type BrowserLauncher interface {
	Open(ctx context.Context, url string) error
}

// WebFlow performs a browser-based OAuth round trip for one provider.
type WebFlow interface {
	StartOAuthFlow(ctx context.Context) (domainauth.SocialAuthResult, error)
	Cancel()
}

// IDTokenVerifier validates an OpenID Connect ID token issued by a provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (domainauth.IDClaims, error)
}

// NativeLoginResult is what a provider SDK returns from a successful native login.
type NativeLoginResult struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	// ExpiresIn is the relative token lifetime; zero when the SDK does not report it.
	ExpiresIn time.Duration
	// Raw is the SDK's own response, kept for diagnostics.
	Raw any
}

// NativeSDK is the opaque surface of a provider's in-app SDK.
// The embedding application supplies the implementation.
type NativeSDK interface {
	Setup(ctx context.Context) error
	Login(ctx context.Context, scopes []string) (NativeLoginResult, error)
	Logout(ctx context.Context) error
	// CurrentAccessToken returns an empty string when the SDK holds no token.
	CurrentAccessToken(ctx context.Context) (string, error)
	RefreshAccessToken(ctx context.Context) (string, error)
}

// ErrSDKCancelled may be returned (or wrapped) by NativeSDK.Login when the user dismisses the prompt.
var ErrSDKCancelled = errors.New("login cancelled by user")

// CallbackReceiver accepts OAuth redirect re-entries for one provider's pending web flow.
type CallbackReceiver interface {
	Provider() domainauth.SocialProvider
	// HandleOAuthCallback reports whether the URL resolved a pending flow.
	HandleOAuthCallback(rawURL string) bool
	Cancel()
}
