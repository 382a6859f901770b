// Package providers adapts native SDKs and browser flows for each social identity
// provider to the ports.AuthProvider contract.
package providers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// Options carries the collaborators shared by every provider adapter.
// At least one of SDK and Web must be set.
type Options struct {
	SDK      ports.NativeSDK
	Web      ports.WebFlow
	Verifier ports.IDTokenVerifier
	// PreferWeb makes the browser flow primary even when an SDK is configured.
	PreferWeb bool
	Logger    *slog.Logger
	Now       func() time.Time
}

var errNoLoginPath = errors.New("providers: a native SDK or web flow is required")

// core implements the parts of ports.AuthProvider that do not vary by provider.
type core struct {
	provider  domainauth.SocialProvider
	sdk       ports.NativeSDK
	web       ports.WebFlow
	verifier  ports.IDTokenVerifier
	preferWeb bool
	logger    *slog.Logger
	now       func() time.Time
	tokens    tokenCache

	initMu      sync.Mutex
	initialized bool
}

// setup populates c in place; core holds locks and must not be copied.
func (c *core) setup(p domainauth.SocialProvider, opts Options) error {
	if opts.SDK == nil && opts.Web == nil {
		return errNoLoginPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	c.provider = p
	c.sdk = opts.SDK
	c.web = opts.Web
	c.verifier = opts.Verifier
	c.preferWeb = opts.PreferWeb
	c.logger = logger.With("component", "provider", "provider", string(p))
	c.now = now
	return nil
}

func (c *core) Provider() domainauth.SocialProvider { return c.provider }

// PreferredMethod reports native when an SDK drives login, web otherwise.
func (c *core) PreferredMethod() domainauth.AuthMethod {
	if c.useNative() {
		return domainauth.MethodNative
	}
	return domainauth.MethodWeb
}

func (c *core) useNative() bool {
	return c.sdk != nil && (!c.preferWeb || c.web == nil)
}

// Initialize sets up the native SDK once. A failure leaves the adapter
// uninitialized so the next call retries.
func (c *core) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if c.initialized {
		return nil
	}
	if c.sdk != nil {
		if err := c.sdk.Setup(ctx); err != nil {
			return autherrors.Wrap(err, autherrors.CodeInitFailed, c.provider, "Failed to initialize "+c.provider.String()+" SDK")
		}
	}
	c.initialized = true
	c.logger.Debug("provider initialized")
	return nil
}

// IsLoggedIn reports whether CurrentToken yields a token.
func (c *core) IsLoggedIn(ctx context.Context) bool {
	_, ok := c.CurrentToken(ctx)
	return ok
}

// CurrentToken prefers the SDK's token and falls back to the last web-flow token.
func (c *core) CurrentToken(ctx context.Context) (string, bool) {
	if c.sdk != nil {
		tok, err := c.sdk.CurrentAccessToken(ctx)
		if err != nil {
			c.logger.Debug("sdk current token unavailable", "error", err)
		} else if tok != "" {
			return tok, true
		}
	}
	return c.tokens.access(c.now())
}

// RefreshToken is unsupported unless a variant overrides it.
func (c *core) RefreshToken(context.Context) (string, bool) { return "", false }

// loginNative runs the SDK login and converts its result.
func (c *core) loginNative(ctx context.Context, scopes []string) (domainauth.SocialAuthResult, error) {
	r, err := c.sdk.Login(ctx, scopes)
	if err != nil {
		return domainauth.SocialAuthResult{}, c.loginError(err, "Native login failed")
	}
	if r.AccessToken == "" {
		return domainauth.SocialAuthResult{}, autherrors.New(autherrors.CodeNoToken, c.provider, "SDK returned no access token")
	}
	tok := domainauth.AuthToken{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		IDToken:      r.IDToken,
	}
	if r.ExpiresIn > 0 {
		tok.ExpiresAt = c.now().Add(r.ExpiresIn)
	}
	return domainauth.SocialAuthResult{
		Provider:    c.provider,
		Token:       tok,
		Method:      domainauth.MethodNative,
		RawResponse: r.Raw,
	}, nil
}

// loginWeb runs the browser flow. Engine errors already carry codes and pass through.
func (c *core) loginWeb(ctx context.Context) (domainauth.SocialAuthResult, error) {
	if c.web == nil {
		return domainauth.SocialAuthResult{}, autherrors.New(autherrors.CodeLoginFailed, c.provider, "Web login is not configured")
	}
	res, err := c.web.StartOAuthFlow(ctx)
	if err != nil {
		return domainauth.SocialAuthResult{}, c.loginError(err, "Web login failed")
	}
	return res, nil
}

// finish verifies the ID token when possible and caches the token.
func (c *core) finish(ctx context.Context, res domainauth.SocialAuthResult) (domainauth.SocialAuthResult, error) {
	if c.verifier != nil && res.Token.IDToken != "" {
		if _, err := c.verifier.Verify(ctx, res.Token.IDToken); err != nil {
			return domainauth.SocialAuthResult{}, autherrors.Wrap(err, autherrors.CodeIDTokenInvalid, c.provider, "ID token verification failed")
		}
	}
	c.tokens.set(res.Token)
	c.logger.Info("provider login succeeded", "method", string(res.Method))
	return res, nil
}

// loginError classifies a provider failure. Coded errors propagate unchanged.
func (c *core) loginError(err error, msg string) error {
	if _, ok := autherrors.As(err); ok {
		return err
	}
	if errors.Is(err, ports.ErrSDKCancelled) || autherrors.IsCancellation(err) {
		return autherrors.Wrap(err, autherrors.CodeUserCancelled, c.provider, "User cancelled login")
	}
	return autherrors.Wrap(err, autherrors.CodeLoginFailed, c.provider, msg)
}

// logoutNative signs out of the SDK when present and always forgets cached tokens.
func (c *core) logoutNative(ctx context.Context) error {
	c.tokens.clear()
	if c.sdk == nil {
		return nil
	}
	if err := c.sdk.Logout(ctx); err != nil {
		return autherrors.Wrap(err, autherrors.CodeLoginFailed, c.provider, "Logout failed")
	}
	return nil
}

// login runs the primary flow for this adapter, auto-initializing first.
func (c *core) login(ctx context.Context, scopes []string) (domainauth.SocialAuthResult, error) {
	if err := c.Initialize(ctx); err != nil {
		return domainauth.SocialAuthResult{}, err
	}
	var (
		res domainauth.SocialAuthResult
		err error
	)
	if c.useNative() {
		res, err = c.loginNative(ctx, scopes)
	} else {
		res, err = c.loginWeb(ctx)
	}
	if err != nil {
		return domainauth.SocialAuthResult{}, err
	}
	return c.finish(ctx, res)
}
