// Package weboauth drives browser-based OAuth flows that re-enter the application
// through a custom-scheme deep link.
package weboauth

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

// DefaultTimeout bounds how long a flow waits for its callback.
const DefaultTimeout = 5 * time.Minute

// Config configures an Engine for one provider.
type Config struct {
	Provider  domainauth.SocialProvider
	ClientID  string
	AppScheme string
	Timeout   time.Duration
	Browser   ports.BrowserLauncher
	Logger    *slog.Logger
	// AuthURL overrides the provider's authorization endpoint (tests, staging relays).
	AuthURL string
	Now     func() time.Time
}

type outcome struct {
	result domainauth.SocialAuthResult
	err    error
}

// pendingRequest is one in-flight flow. done receives exactly one outcome.
type pendingRequest struct {
	state flowState
	done  chan outcome
	timer *time.Timer
}

// Engine runs browser OAuth flows for a single provider.
// At most one flow is pending; starting another supersedes it.
type Engine struct {
	provider domainauth.SocialProvider
	req      authRequest
	browser  ports.BrowserLauncher
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

var (
	_ ports.WebFlow          = (*Engine)(nil)
	_ ports.CallbackReceiver = (*Engine)(nil)
)

// NewEngine validates cfg and returns an idle engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("weboauth: client id is required")
	}
	if cfg.Browser == nil {
		return nil, errors.New("weboauth: browser launcher is required")
	}
	if cfg.AppScheme == "" {
		cfg.AppScheme = DefaultAppScheme
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	req, err := newAuthRequest(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		provider: cfg.Provider,
		req:      req,
		browser:  cfg.Browser,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger.With("component", "weboauth", "provider", string(cfg.Provider)),
		now:      cfg.Now,
		pending:  make(map[string]*pendingRequest),
	}, nil
}

// Provider returns the provider this engine serves.
func (e *Engine) Provider() domainauth.SocialProvider { return e.provider }

// StartOAuthFlow opens the provider's authorization page and blocks until the callback
// arrives, the flow times out, is superseded or cancelled, or ctx is done.
func (e *Engine) StartOAuthFlow(ctx context.Context) (domainauth.SocialAuthResult, error) {
	st, err := newFlowState()
	if err != nil {
		return domainauth.SocialAuthResult{}, autherrors.Wrap(err, autherrors.CodeLoginFailed, e.provider, "Failed to generate OAuth state")
	}
	authURL := e.req.url(st.String())

	req := &pendingRequest{state: st, done: make(chan outcome, 1)}

	e.mu.Lock()
	superseded := e.takeAllLocked()
	e.pending[st.id] = req
	req.timer = time.AfterFunc(e.timeout, func() {
		if e.settle(st.id, outcome{err: autherrors.New(autherrors.CodeTimeout, e.provider, "OAuth flow timed out")}) {
			e.logger.Warn("oauth flow timed out", "timeout", e.timeout)
		}
	})
	e.mu.Unlock()

	for _, old := range superseded {
		old.done <- outcome{err: autherrors.New(autherrors.CodeSuperseded, e.provider, "OAuth flow superseded by a newer login")}
	}

	e.logger.Info("opening oauth url")
	if err := e.browser.Open(ctx, authURL); err != nil {
		e.settle(st.id, outcome{err: autherrors.Wrap(err, autherrors.CodeBrowserFailed, e.provider, "Failed to open browser")})
	}

	select {
	case out := <-req.done:
		return out.result, out.err
	case <-ctx.Done():
		e.settle(st.id, outcome{err: autherrors.Wrap(ctx.Err(), autherrors.CodeUserCancelled, e.provider, "User cancelled OAuth flow")})
		// Either our settle or a concurrent one won; exactly one outcome is buffered.
		out := <-req.done
		return out.result, out.err
	}
}

// HandleOAuthCallback resolves the pending flow the callback belongs to.
// It reports false when the callback matched no pending flow.
func (e *Engine) HandleOAuthCallback(rawURL string) bool {
	params, parseErr := parseCallbackURL(rawURL)
	if parseErr != nil {
		id, ok := e.soleID()
		if !ok {
			e.logger.Warn("ignoring malformed oauth callback with nothing pending", "error", parseErr)
			return false
		}
		return e.settle(id, outcome{err: autherrors.Wrap(parseErr, autherrors.CodeParseError, e.provider, "Failed to parse OAuth callback")})
	}

	id, out, ok := e.correlate(params)
	if !ok {
		return false
	}
	if out == nil {
		o := e.outcomeFor(params)
		out = &o
	}
	return e.settle(id, *out)
}

// Cancel rejects the pending flow with USER_CANCELLED. No-op when idle.
func (e *Engine) Cancel() {
	e.mu.Lock()
	reqs := e.takeAllLocked()
	e.mu.Unlock()
	for _, r := range reqs {
		r.done <- outcome{err: autherrors.New(autherrors.CodeUserCancelled, e.provider, "User cancelled OAuth flow")}
	}
	if len(reqs) > 0 {
		e.logger.Info("oauth flow cancelled")
	}
}

// Pending returns the number of in-flight flows.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// correlate finds the request a callback belongs to. A non-nil outcome overrides
// the one derived from the callback parameters.
func (e *Engine) correlate(params callbackParams) (string, *outcome, bool) {
	if params.State == "" {
		id, ok := e.soleID()
		if !ok {
			e.logger.Warn("ignoring oauth callback without state", "pending", e.Pending())
		}
		return id, nil, ok
	}

	got, ok := parseState(params.State)
	if !ok {
		e.logger.Warn("ignoring oauth callback with malformed state")
		return "", nil, false
	}

	e.mu.Lock()
	req, found := e.pending[got.id]
	e.mu.Unlock()
	if !found {
		e.logger.Warn("ignoring oauth callback for unknown flow")
		return "", nil, false
	}
	if !req.state.matches(got) {
		e.logger.Warn("oauth callback state mismatch")
		return got.id, &outcome{err: autherrors.New(autherrors.CodeStateMismatch, e.provider, "OAuth state did not match")}, true
	}
	return got.id, nil, true
}

func (e *Engine) outcomeFor(p callbackParams) outcome {
	if p.Error != "" {
		msg := p.ErrorDescription
		if msg == "" {
			msg = "OAuth failed"
		}
		return outcome{err: autherrors.New(autherrors.ErrorCode(p.Error), e.provider, msg)}
	}

	access := p.AccessToken
	if access == "" && e.req.idTokenCredential {
		access = p.IDToken
	}
	if access == "" {
		return outcome{err: autherrors.New(autherrors.CodeNoToken, e.provider, "No access token in callback")}
	}
	if p.badExpiresIn != "" {
		e.logger.Warn("ignoring non-numeric expires_in", "expires_in", p.badExpiresIn)
	}

	raw := make(map[string]string, len(p.Raw))
	for k, v := range p.Raw {
		raw[k] = v
	}
	return outcome{result: domainauth.SocialAuthResult{
		Provider: e.provider,
		Method:   domainauth.MethodWeb,
		Token: domainauth.AuthToken{
			AccessToken:  access,
			RefreshToken: p.RefreshToken,
			IDToken:      p.IDToken,
			ExpiresAt:    domainauth.ExpiresIn(e.now(), p.ExpiresIn),
		},
		RawResponse: raw,
	}}
}

// settle removes the request and delivers out. Only the caller that removes the
// entry delivers, so each request completes exactly once.
func (e *Engine) settle(id string, out outcome) bool {
	e.mu.Lock()
	req, ok := e.pending[id]
	if ok {
		delete(e.pending, id)
	}
	e.mu.Unlock()
	if !ok {
		return false
	}
	req.timer.Stop()
	req.done <- out
	return true
}

// takeAllLocked empties the pending map and stops timers. Caller holds e.mu.
func (e *Engine) takeAllLocked() []*pendingRequest {
	if len(e.pending) == 0 {
		return nil
	}
	out := make([]*pendingRequest, 0, len(e.pending))
	for id, r := range e.pending {
		if r.timer != nil {
			r.timer.Stop()
		}
		out = append(out, r)
		delete(e.pending, id)
	}
	return out
}

func (e *Engine) soleID() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) != 1 {
		return "", false
	}
	for id := range e.pending {
		return id, true
	}
	return "", false
}
