package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/observability/metrics"
	"github.com/yoii-livecomm/socialauth/internal/observability/statsd"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"golang.org/x/sync/singleflight"
)

// Session store keys. Logout removes all of them.
const (
	keyAppToken     = "@app_token"
	keyRefreshToken = "@refresh_token"
	keyUserProfile  = "@user_profile"
	keyAuthProvider = "@auth_provider"
	keySocialToken  = "@social_token"
)

var sessionKeys = []string{keyAppToken, keyRefreshToken, keyUserProfile, keyAuthProvider, keySocialToken}

const msgExchangeFailed = "Failed to exchange token with backend"

// SocialAuthDeps are the required collaborators of SocialAuthService.
type SocialAuthDeps struct {
	Store     ports.SessionStore
	Exchanger ports.TokenExchanger
}

// SocialAuthTelemetry groups optional logging, metrics and clock dependencies.
type SocialAuthTelemetry struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

// SocialAuthServiceOptions groups dependencies for SocialAuthService.
type SocialAuthServiceOptions struct {
	Providers []ports.AuthProvider // Required: one adapter per provider tag
	Deps      SocialAuthDeps       // Required
	Telemetry SocialAuthTelemetry  // Optional
}

// SocialAuthService drives provider login, exchanges the provider token with the
// backend, and keeps the resulting app session in the session store.
type SocialAuthService struct {
	providers map[domainauth.SocialProvider]ports.AuthProvider
	store     ports.SessionStore
	exchanger ports.TokenExchanger
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time

	initMu      sync.Mutex
	initialized bool

	refreshes singleflight.Group
}

// NewSocialAuthService constructs the service. It panics when a required dependency is
// missing or when two adapters claim the same provider.
func NewSocialAuthService(opts SocialAuthServiceOptions) *SocialAuthService {
	if opts.Deps.Store == nil {
		panic("SessionStore is required")
	}
	if opts.Deps.Exchanger == nil {
		panic("TokenExchanger is required")
	}

	providers := make(map[domainauth.SocialProvider]ports.AuthProvider, len(opts.Providers))
	for _, p := range opts.Providers {
		if p == nil {
			continue
		}
		if _, dup := providers[p.Provider()]; dup {
			panic(fmt.Sprintf("provider %s registered twice", p.Provider()))
		}
		providers[p.Provider()] = p
	}

	logger := opts.Telemetry.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Telemetry.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}
	now := opts.Telemetry.Now
	if now == nil {
		now = time.Now
	}

	return &SocialAuthService{
		providers: providers,
		store:     opts.Deps.Store,
		exchanger: opts.Deps.Exchanger,
		logger:    logger.With("component", "social_auth"),
		metrics:   sink,
		now:       now,
	}
}

// Providers returns the registered provider tags in sorted order.
func (s *SocialAuthService) Providers() []domainauth.SocialProvider {
	out := make([]domainauth.SocialProvider, 0, len(s.providers))
	for p := range s.providers {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Initialize initializes every registered adapter. Failures are joined and leave the
// service uninitialized so a later call retries; after success it is a no-op.
func (s *SocialAuthService) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized {
		return nil
	}

	var errs []error
	for _, p := range s.Providers() {
		if err := s.providers[p].Initialize(ctx); err != nil {
			errs = append(errs, fmt.Errorf("initialize %s: %w", p, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.initialized = true
	s.logger.InfoContext(ctx, "social auth initialized", "providers", len(s.providers))
	return nil
}

// LoginWithProvider runs the provider flow, exchanges its token with the backend and
// persists the app session. Adapter errors are returned unchanged.
func (s *SocialAuthService) LoginWithProvider(
	ctx context.Context,
	provider domainauth.SocialProvider,
) (resp domainauth.BackendAuthResponse, err error) {
	start := s.now()
	var method domainauth.AuthMethod
	defer func() {
		metrics.EmitLogin(s.metrics, metrics.LoginMetric{
			Provider: string(provider),
			Method:   string(method),
			Duration: s.now().Sub(start),
			Err:      err,
		})
	}()

	adapter, ok := s.providers[provider]
	if !ok {
		return domainauth.BackendAuthResponse{}, autherrors.Newf(
			autherrors.CodeProviderNotFound, provider, "Provider %s is not registered", provider)
	}
	method = adapter.PreferredMethod()

	if initErr := s.Initialize(ctx); initErr != nil {
		// The adapter's own Login re-attempts its setup and reports INIT_FAILED.
		s.logger.WarnContext(ctx, "initialize before login failed", "provider", provider, "error", initErr)
	}

	result, err := adapter.Login(ctx)
	if err != nil {
		if autherrors.IsUserCancelled(err) {
			s.logger.InfoContext(ctx, "login cancelled", "provider", provider)
		} else {
			s.logger.WarnContext(ctx, "provider login failed", "provider", provider, "code", autherrors.CodeOf(err), "error", err)
		}
		return domainauth.BackendAuthResponse{}, err
	}
	method = result.Method

	auth, err := s.exchanger.Exchange(ctx, ports.ExchangeRequest{
		Provider:    provider,
		AccessToken: result.Token.AccessToken,
		IDToken:     result.Token.IDToken,
		Method:      result.Method,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "backend exchange failed", "provider", provider, "error", err)
		return domainauth.BackendAuthResponse{}, exchangeError(provider, err)
	}

	if err := s.persist(ctx, provider, result.Token, auth); err != nil {
		return domainauth.BackendAuthResponse{}, fmt.Errorf("persist session: %w", err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "provider", provider, "method", result.Method, "user_id", auth.User.ID)
	return auth, nil
}

func exchangeError(provider domainauth.SocialProvider, err error) *autherrors.SocialAuthError {
	msg := msgExchangeFailed
	var backend interface{ BackendMessage() string }
	if errors.As(err, &backend) && backend.BackendMessage() != "" {
		msg = backend.BackendMessage()
	}
	return autherrors.Wrap(err, autherrors.CodeBackendExchangeFailed, provider, msg)
}

func (s *SocialAuthService) persist(
	ctx context.Context,
	provider domainauth.SocialProvider,
	token domainauth.AuthToken,
	auth domainauth.BackendAuthResponse,
) error {
	user, err := json.Marshal(auth.User)
	if err != nil {
		return fmt.Errorf("marshal user profile: %w", err)
	}
	pairs := []ports.KeyValue{
		{Key: keyAppToken, Value: auth.AppToken},
		{Key: keyUserProfile, Value: string(user)},
		{Key: keyAuthProvider, Value: string(provider)},
		{Key: keySocialToken, Value: token.AccessToken},
	}
	if auth.RefreshToken != "" {
		pairs = append(pairs, ports.KeyValue{Key: keyRefreshToken, Value: auth.RefreshToken})
	}
	if err := s.store.MultiSet(ctx, pairs); err != nil {
		return err
	}
	if auth.RefreshToken == "" {
		// A refresh token left over from an earlier session belongs to another login.
		if err := s.store.Remove(ctx, keyRefreshToken); err != nil {
			return err
		}
	}
	return nil
}

// Logout signs out of provider (or the stored active provider when empty) and clears
// the session. Provider sign-out failures are logged; only clearing the store can fail.
func (s *SocialAuthService) Logout(ctx context.Context, provider domainauth.SocialProvider) error {
	if provider == "" {
		provider, _ = s.ActiveProvider(ctx)
	}
	if adapter, ok := s.providers[provider]; ok {
		if err := adapter.Logout(ctx); err != nil {
			s.logger.WarnContext(ctx, "provider logout failed", "provider", provider, "error", err)
		}
	}
	if err := s.store.MultiRemove(ctx, sessionKeys); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "logged out", "provider", provider)
	return nil
}

// CurrentUser returns the stored profile, or nil when absent or unreadable.
func (s *SocialAuthService) CurrentUser(ctx context.Context) *domainauth.UserProfile {
	raw, ok := s.read(ctx, keyUserProfile)
	if !ok {
		return nil
	}
	var user domainauth.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.WarnContext(ctx, "stored user profile is not valid json", "error", err)
		return nil
	}
	return &user
}

// CurrentToken returns the stored app token.
func (s *SocialAuthService) CurrentToken(ctx context.Context) (string, bool) {
	return s.read(ctx, keyAppToken)
}

// IsLoggedIn reports whether an app token is stored.
func (s *SocialAuthService) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.CurrentToken(ctx)
	return ok
}

// ActiveProvider returns the provider of the stored session.
func (s *SocialAuthService) ActiveProvider(ctx context.Context) (domainauth.SocialProvider, bool) {
	raw, ok := s.read(ctx, keyAuthProvider)
	if !ok {
		return "", false
	}
	p, err := domainauth.ParseProvider(raw)
	if err != nil {
		return "", false
	}
	return p, true
}

// read treats absence, empty values and store failures alike.
func (s *SocialAuthService) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.DebugContext(ctx, "session read failed", "key", key, "error", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// RefreshAppToken trades the stored refresh token for a new app token. Concurrent
// callers share one backend call. Any failure yields ("", false).
func (s *SocialAuthService) RefreshAppToken(ctx context.Context) (string, bool) {
	v, err, _ := s.refreshes.Do("app", func() (any, error) {
		return s.refreshAppToken(ctx)
	})
	if err != nil {
		return "", false
	}
	token, _ := v.(string)
	return token, token != ""
}

func (s *SocialAuthService) refreshAppToken(ctx context.Context) (token string, err error) {
	start := s.now()
	result := ""
	defer func() {
		metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{
			Kind:     "app",
			Result:   result,
			Duration: s.now().Sub(start),
			Err:      err,
		})
	}()

	refreshToken, ok := s.read(ctx, keyRefreshToken)
	if !ok {
		result = metrics.ResultNoop
		return "", nil
	}

	resp, err := s.exchanger.Refresh(ctx, refreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "app token refresh failed", "error", err)
		return "", fmt.Errorf("refresh app token: %w", err)
	}

	pairs := []ports.KeyValue{{Key: keyAppToken, Value: resp.AppToken}}
	if resp.RefreshToken != "" && resp.RefreshToken != refreshToken {
		pairs = append(pairs, ports.KeyValue{Key: keyRefreshToken, Value: resp.RefreshToken})
	}
	if err := s.store.MultiSet(ctx, pairs); err != nil {
		s.logger.WarnContext(ctx, "store refreshed app token failed", "error", err)
		return "", fmt.Errorf("store refreshed app token: %w", err)
	}
	return resp.AppToken, nil
}

// EnsureFreshToken returns the app token, refreshing it first when its JWT exp claim
// falls within skew. Tokens that are not JWTs or carry no exp are returned as stored.
// If the refresh fails the old token is still returned while it has not expired.
func (s *SocialAuthService) EnsureFreshToken(ctx context.Context, skew time.Duration) (string, bool) {
	token, ok := s.CurrentToken(ctx)
	if !ok {
		return "", false
	}
	exp, ok := tokenExpiry(token)
	if !ok {
		return token, true
	}
	now := s.now()
	if now.Add(skew).Before(exp) {
		return token, true
	}
	if fresh, ok := s.RefreshAppToken(ctx); ok {
		return fresh, true
	}
	if now.Before(exp) {
		return token, true
	}
	return "", false
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// RefreshProviderToken asks the adapter for a new provider access token. When the
// provider owns the stored session, the stored social token is updated too.
func (s *SocialAuthService) RefreshProviderToken(
	ctx context.Context,
	provider domainauth.SocialProvider,
) (string, bool) {
	start := s.now()
	adapter, ok := s.providers[provider]
	if !ok {
		return "", false
	}
	token, ok := adapter.RefreshToken(ctx)
	result := metrics.ResultSuccess
	if !ok {
		result = metrics.ResultNoop
	}
	metrics.EmitRefresh(s.metrics, metrics.RefreshMetric{Kind: "provider", Result: result, Duration: s.now().Sub(start)})
	if !ok {
		return "", false
	}
	if active, isActive := s.ActiveProvider(ctx); isActive && active == provider {
		if err := s.store.Set(ctx, keySocialToken, token); err != nil {
			s.logger.WarnContext(ctx, "store refreshed provider token failed", "provider", provider, "error", err)
		}
	}
	return token, true
}
