package weboauth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/mocks"
	mockauth "github.com/yoii-livecomm/socialauth/internal/mocks/auth"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type flowResult struct {
	res domainauth.SocialAuthResult
	err error
}

func newTestEngine(t *testing.T, p domainauth.SocialProvider, timeout time.Duration) (*Engine, *mockauth.RecordingBrowser) {
	t.Helper()
	b := mockauth.NewRecordingBrowser(4)
	e, err := NewEngine(Config{
		Provider: p,
		ClientID: "client-123",
		Timeout:  timeout,
		Browser:  b,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return e, b
}

func start(ctx context.Context, e *Engine) <-chan flowResult {
	ch := make(chan flowResult, 1)
	go func() {
		res, err := e.StartOAuthFlow(ctx)
		ch <- flowResult{res: res, err: err}
	}()
	return ch
}

func awaitURL(t *testing.T, b *mockauth.RecordingBrowser) *url.URL {
	t.Helper()
	select {
	case raw := <-b.URLs:
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("browser was never opened")
		return nil
	}
}

func awaitResult(t *testing.T, ch <-chan flowResult) flowResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not complete")
		return flowResult{}
	}
}

func TestNewEngine_Validation(t *testing.T) {
	b := mockauth.NewRecordingBrowser(1)

	_, err := NewEngine(Config{Provider: domainauth.ProviderLine, Browser: b})
	require.Error(t, err)

	_, err = NewEngine(Config{Provider: domainauth.ProviderLine, ClientID: "x"})
	require.Error(t, err)

	_, err = NewEngine(Config{Provider: "myspace", ClientID: "x", Browser: b})
	require.Error(t, err)

	e, err := NewEngine(Config{Provider: domainauth.ProviderLine, ClientID: "x", Browser: b})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, e.timeout)
	assert.Equal(t, domainauth.ProviderLine, e.Provider())
}

func TestStartOAuthFlow_AuthorizationURL(t *testing.T) {
	tests := []struct {
		name     string
		provider domainauth.SocialProvider
		host     string
		path     string
		scope    string
		respType string
		respMode string
	}{
		{"line", domainauth.ProviderLine, "access.line.me", "/oauth2/v2.1/authorize", "profile openid email", "code", ""},
		{"facebook", domainauth.ProviderFacebook, "www.facebook.com", "/v18.0/dialog/oauth", "public_profile,email", "code", ""},
		{"google", domainauth.ProviderGoogle, "accounts.google.com", "/o/oauth2/v2/auth", "profile email", "code", ""},
		{"apple", domainauth.ProviderApple, "appleid.apple.com", "/auth/authorize", "", "code id_token", "fragment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, b := newTestEngine(t, tt.provider, time.Minute)
			done := start(context.Background(), e)

			u := awaitURL(t, b)
			q := u.Query()
			assert.Equal(t, tt.host, u.Host)
			assert.Equal(t, tt.path, u.Path)
			assert.Equal(t, "client-123", q.Get("client_id"))
			assert.Equal(t, "yoii-livecomm://oauth/"+string(tt.provider)+"/callback", q.Get("redirect_uri"))
			assert.Equal(t, tt.scope, q.Get("scope"))
			assert.Equal(t, tt.respType, q.Get("response_type"))
			assert.Equal(t, tt.respMode, q.Get("response_mode"))
			assert.Contains(t, q.Get("state"), ".")

			e.Cancel()
			r := awaitResult(t, done)
			assert.True(t, autherrors.IsUserCancelled(r.err))
		})
	}
}

func TestHandleOAuthCallback_Success(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderGoogle, time.Minute)
	done := start(context.Background(), e)
	state := awaitURL(t, b).Query().Get("state")

	ok := e.HandleOAuthCallback("yoii-livecomm://oauth/google/callback?access_token=tok-1&refresh_token=ref-1&expires_in=3600&state=" + url.QueryEscape(state))
	require.True(t, ok)

	r := awaitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, domainauth.ProviderGoogle, r.res.Provider)
	assert.Equal(t, domainauth.MethodWeb, r.res.Method)
	assert.Equal(t, "tok-1", r.res.Token.AccessToken)
	assert.Equal(t, "ref-1", r.res.Token.RefreshToken)
	assert.Equal(t, fixedNow.Add(time.Hour), r.res.Token.ExpiresAt)
	raw, isMap := r.res.RawResponse.(map[string]string)
	require.True(t, isMap)
	assert.Equal(t, "3600", raw["expires_in"])
	assert.Equal(t, 0, e.Pending())
}

func TestHandleOAuthCallback_ProviderError(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		code    autherrors.ErrorCode
		message string
	}{
		{"with description", "error=access_denied&error_description=User+denied", "access_denied", "User denied"},
		{"without description", "error=server_error", "server_error", "OAuth failed"},
		{"no token", "token_type=bearer", autherrors.CodeNoToken, "No access token in callback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, b := newTestEngine(t, domainauth.ProviderLine, time.Minute)
			done := start(context.Background(), e)
			state := awaitURL(t, b).Query().Get("state")

			require.True(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback?"+tt.query+"&state="+url.QueryEscape(state)))

			r := awaitResult(t, done)
			sae, ok := autherrors.As(r.err)
			require.True(t, ok)
			assert.Equal(t, tt.code, sae.Code)
			assert.Equal(t, tt.message, sae.Message)
			assert.Equal(t, domainauth.ProviderLine, sae.Provider)
			assert.Equal(t, 0, e.Pending())
		})
	}
}

func TestHandleOAuthCallback_FragmentOverridesQuery(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderFacebook, time.Minute)
	done := start(context.Background(), e)
	state := url.QueryEscape(awaitURL(t, b).Query().Get("state"))

	raw := "yoii-livecomm://oauth/facebook/callback?access_token=from-query&state=" + state +
		"#access_token=from-fragment&expires_in=60"
	require.True(t, e.HandleOAuthCallback(raw))

	r := awaitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, "from-fragment", r.res.Token.AccessToken)
	assert.Equal(t, fixedNow.Add(time.Minute), r.res.Token.ExpiresAt)
}

func TestHandleOAuthCallback_InvalidExpiresInIgnored(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderFacebook, time.Minute)
	done := start(context.Background(), e)
	state := url.QueryEscape(awaitURL(t, b).Query().Get("state"))

	require.True(t, e.HandleOAuthCallback("yoii-livecomm://oauth/facebook/callback#access_token=t&expires_in=soon&state="+state))

	r := awaitResult(t, done)
	require.NoError(t, r.err)
	assert.True(t, r.res.Token.ExpiresAt.IsZero())
}

func TestHandleOAuthCallback_AppleIDTokenCredential(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderApple, time.Minute)
	done := start(context.Background(), e)
	state := url.QueryEscape(awaitURL(t, b).Query().Get("state"))

	require.True(t, e.HandleOAuthCallback("yoii-livecomm://oauth/apple/callback#code=c1&id_token=eyJ.id.tok&state="+state))

	r := awaitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, "eyJ.id.tok", r.res.Token.AccessToken)
	assert.Equal(t, "eyJ.id.tok", r.res.Token.IDToken)
}

func TestStartOAuthFlow_TimeoutFiresOnce(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderLine, 30*time.Millisecond)
	done := start(context.Background(), e)
	state := url.QueryEscape(awaitURL(t, b).Query().Get("state"))

	r := awaitResult(t, done)
	assert.True(t, autherrors.Is(r.err, autherrors.CodeTimeout))
	assert.Equal(t, 0, e.Pending())

	// A late callback finds nothing to resolve.
	assert.False(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback?access_token=late&state="+state))
}

func TestStartOAuthFlow_Supersede(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderGoogle, time.Minute)

	first := start(context.Background(), e)
	firstState := url.QueryEscape(awaitURL(t, b).Query().Get("state"))

	second := start(context.Background(), e)
	secondState := url.QueryEscape(awaitURL(t, b).Query().Get("state"))

	r1 := awaitResult(t, first)
	assert.True(t, autherrors.Is(r1.err, autherrors.CodeSuperseded))
	assert.Equal(t, 1, e.Pending())

	// The superseded flow's callback no longer correlates.
	assert.False(t, e.HandleOAuthCallback("yoii-livecomm://oauth/google/callback?access_token=old&state="+firstState))

	require.True(t, e.HandleOAuthCallback("yoii-livecomm://oauth/google/callback?access_token=new&state="+secondState))
	r2 := awaitResult(t, second)
	require.NoError(t, r2.err)
	assert.Equal(t, "new", r2.res.Token.AccessToken)
}

func TestHandleOAuthCallback_StateMismatch(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderLine, time.Minute)
	done := start(context.Background(), e)
	st, ok := parseState(awaitURL(t, b).Query().Get("state"))
	require.True(t, ok)

	forged := url.QueryEscape(st.id + ".not-the-secret")
	require.True(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback?access_token=evil&state="+forged))

	r := awaitResult(t, done)
	assert.True(t, autherrors.Is(r.err, autherrors.CodeStateMismatch))
	assert.Equal(t, 0, e.Pending())
}

func TestHandleOAuthCallback_Correlation(t *testing.T) {
	t.Run("unknown state is ignored", func(t *testing.T) {
		e, b := newTestEngine(t, domainauth.ProviderLine, time.Minute)
		done := start(context.Background(), e)
		awaitURL(t, b)

		assert.False(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback?access_token=x&state=other-id.secret"))
		assert.False(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback?access_token=x&state=garbage"))
		assert.Equal(t, 1, e.Pending())

		e.Cancel()
		r := awaitResult(t, done)
		assert.True(t, autherrors.IsUserCancelled(r.err))
	})

	t.Run("missing state routes to sole pending flow", func(t *testing.T) {
		e, b := newTestEngine(t, domainauth.ProviderLine, time.Minute)
		done := start(context.Background(), e)
		awaitURL(t, b)

		require.True(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback#access_token=relayed"))
		r := awaitResult(t, done)
		require.NoError(t, r.err)
		assert.Equal(t, "relayed", r.res.Token.AccessToken)
	})

	t.Run("nothing pending", func(t *testing.T) {
		e, _ := newTestEngine(t, domainauth.ProviderLine, time.Minute)
		assert.False(t, e.HandleOAuthCallback("yoii-livecomm://oauth/line/callback?access_token=x"))
		assert.False(t, e.HandleOAuthCallback("://bad"))
	})
}

func TestHandleOAuthCallback_MalformedURL(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderFacebook, time.Minute)
	done := start(context.Background(), e)
	awaitURL(t, b)

	require.True(t, e.HandleOAuthCallback("://missing-scheme"))

	r := awaitResult(t, done)
	assert.True(t, autherrors.Is(r.err, autherrors.CodeParseError))
	assert.Equal(t, 0, e.Pending())
}

func TestStartOAuthFlow_BrowserFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	browser := mocks.NewMockBrowserLauncher(ctrl)
	launchErr := errors.New("no display")
	browser.EXPECT().Open(gomock.Any(), gomock.Any()).Return(launchErr)

	e, err := NewEngine(Config{Provider: domainauth.ProviderGoogle, ClientID: "c", Browser: browser})
	require.NoError(t, err)

	_, err = e.StartOAuthFlow(context.Background())
	require.Error(t, err)
	assert.True(t, autherrors.Is(err, autherrors.CodeBrowserFailed))
	assert.ErrorIs(t, err, launchErr)
	assert.Equal(t, 0, e.Pending())
}

func TestStartOAuthFlow_ContextCancelled(t *testing.T) {
	e, b := newTestEngine(t, domainauth.ProviderLine, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := start(ctx, e)
	awaitURL(t, b)

	cancel()
	r := awaitResult(t, done)
	assert.True(t, autherrors.IsUserCancelled(r.err))
	assert.ErrorIs(t, r.err, context.Canceled)
	assert.Equal(t, 0, e.Pending())
}

func TestCancel_Idle(t *testing.T) {
	e, _ := newTestEngine(t, domainauth.ProviderLine, time.Minute)
	assert.NotPanics(t, e.Cancel)
	assert.Equal(t, 0, e.Pending())
}

func TestRedirectURI(t *testing.T) {
	assert.Equal(t, "yoii-livecomm://oauth/apple/callback", RedirectURI("yoii-livecomm", domainauth.ProviderApple))
	assert.Equal(t, "myapp://oauth/line/callback", RedirectURI("myapp://", domainauth.ProviderLine))

	ep, ok := Endpoint(domainauth.ProviderGoogle)
	require.True(t, ok)
	assert.Equal(t, "https://oauth2.googleapis.com/token", ep.TokenURL)
}
