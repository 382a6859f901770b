package devauth

// Package devauth provides a config-driven NativeSDK for local development.
// It short-circuits the provider's in-app login and hands out locally generated tokens.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// Config controls the dev SDK behavior.
type Config struct {
	Provider domainauth.SocialProvider
	// TokenTTL is the reported access token lifetime; default 1h when zero.
	TokenTTL time.Duration
	// Cancel makes every Login behave as if the user dismissed the prompt.
	Cancel bool
}

// SDK implements ports.NativeSDK without talking to any provider.
type SDK struct {
	provider domainauth.SocialProvider
	ttl      time.Duration
	cancel   bool

	mu    sync.Mutex
	ready bool
	token string
}

var _ ports.NativeSDK = (*SDK)(nil)

var errNotSetup = errors.New("dev sdk: Setup has not been called")

// NewSDK constructs a dev SDK from Config.
func NewSDK(cfg Config) (*SDK, error) {
	if !cfg.Provider.Valid() {
		return nil, fmt.Errorf("dev sdk: unknown provider %q", cfg.Provider)
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return &SDK{provider: cfg.Provider, ttl: ttl, cancel: cfg.Cancel}, nil
}

func (s *SDK) Setup(context.Context) error {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	return nil
}

// Login returns a fresh random token for the configured provider.
func (s *SDK) Login(ctx context.Context, _ []string) (ports.NativeLoginResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.NativeLoginResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ports.NativeLoginResult{}, errNotSetup
	}
	if s.cancel {
		return ports.NativeLoginResult{}, ports.ErrSDKCancelled
	}
	tok, err := s.mint()
	if err != nil {
		return ports.NativeLoginResult{}, err
	}
	s.token = tok
	return ports.NativeLoginResult{
		AccessToken: tok,
		ExpiresIn:   s.ttl,
		Raw:         map[string]string{"sdk": "devauth"},
	}, nil
}

func (s *SDK) Logout(context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

func (s *SDK) CurrentAccessToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// RefreshAccessToken rotates the token of a logged-in session.
func (s *SDK) RefreshAccessToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", errors.New("dev sdk: not logged in")
	}
	tok, err := s.mint()
	if err != nil {
		return "", err
	}
	s.token = tok
	return tok, nil
}

func (s *SDK) mint() (string, error) {
	r, err := randomString(24)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return "dev-" + string(s.provider) + "-" + r, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
