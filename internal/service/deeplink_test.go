package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/internal/adapters/weboauth"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	mockauth "github.com/yoii-livecomm/socialauth/internal/mocks/auth"
	"github.com/yoii-livecomm/socialauth/internal/observability/metrics"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

type flowOutcome struct {
	res domainauth.SocialAuthResult
	err error
}

func newLineRouter(t *testing.T) (*DeepLinkRouter, *weboauth.Engine, *mockauth.RecordingBrowser, *recordingSink) {
	t.Helper()
	browser := mockauth.NewRecordingBrowser(2)
	engine, err := weboauth.NewEngine(weboauth.Config{
		Provider: domainauth.ProviderLine,
		ClientID: "line-channel",
		Timeout:  time.Minute,
		Browser:  browser,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	sink := &recordingSink{}
	router := NewDeepLinkRouter(DeepLinkRouterOptions{
		Scheme:    "yoii-livecomm://",
		Receivers: []ports.CallbackReceiver{engine},
		Telemetry: SocialAuthTelemetry{Metrics: sink},
	})
	return router, engine, browser, sink
}

func startFlow(engine *weboauth.Engine) <-chan flowOutcome {
	ch := make(chan flowOutcome, 1)
	go func() {
		res, err := engine.StartOAuthFlow(context.Background())
		ch <- flowOutcome{res: res, err: err}
	}()
	return ch
}

func openedState(t *testing.T, b *mockauth.RecordingBrowser) string {
	t.Helper()
	select {
	case raw := <-b.URLs:
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u.Query().Get("state")
	case <-time.After(2 * time.Second):
		t.Fatal("browser was never opened")
		return ""
	}
}

func awaitFlow(t *testing.T, ch <-chan flowOutcome) flowOutcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not complete")
		return flowOutcome{}
	}
}

func TestNewDeepLinkRouter(t *testing.T) {
	assert.Panics(t, func() { NewDeepLinkRouter(DeepLinkRouterOptions{Scheme: "  "}) })

	r := NewDeepLinkRouter(DeepLinkRouterOptions{Scheme: "yoii-livecomm://"})
	assert.Equal(t, "yoii-livecomm", r.Scheme())
	assert.Equal(t, "yoii-livecomm://oauth/google/callback", r.CallbackURL(domainauth.ProviderGoogle, ""))
	assert.Equal(t, "yoii-livecomm://oauth/line/callback?code=1", r.CallbackURL(domainauth.ProviderLine, "code=1"))
}

func TestRoute_ResolvesPendingFlow(t *testing.T) {
	router, engine, browser, sink := newLineRouter(t)
	done := startFlow(engine)
	state := openedState(t, browser)

	err := router.Route(router.CallbackURL(domainauth.ProviderLine, "access_token=line-at&state="+url.QueryEscape(state)))
	require.NoError(t, err)

	out := awaitFlow(t, done)
	require.NoError(t, out.err)
	assert.Equal(t, "line-at", out.res.Token.AccessToken)
	assert.Equal(t, domainauth.ProviderLine, out.res.Provider)

	callbacks := sink.named(metrics.CallbackCount)
	require.Len(t, callbacks, 1)
	assert.Equal(t, "line", callbacks[0].tags["provider"])
}

func TestRoute_ForeignURLs(t *testing.T) {
	router, _, _, sink := newLineRouter(t)
	for _, raw := range []string{
		"https://example.com/oauth/line/callback",
		"other-app://oauth/line/callback",
		"yoii-livecomm://profile/42",
		"yoii-livecomm://oauth/line",
		"yoii-livecomm://oauth/line/callback/extra",
		"yoii-livecomm://oauth//callback",
		"%zz",
	} {
		t.Run(raw, func(t *testing.T) {
			assert.ErrorIs(t, router.Route(raw), ErrNotOAuthCallback)
		})
	}
	assert.Empty(t, sink.named(metrics.CallbackCount), "foreign links are not counted")
}

func TestRoute_SchemeIsCaseInsensitive(t *testing.T) {
	router, engine, browser, _ := newLineRouter(t)
	done := startFlow(engine)
	state := openedState(t, browser)

	require.NoError(t, router.Route("YOII-LIVECOMM://oauth/line/callback?access_token=x&state="+url.QueryEscape(state)))
	assert.NoError(t, awaitFlow(t, done).err)
}

func TestRoute_UnknownOrUnregisteredProvider(t *testing.T) {
	router, _, _, _ := newLineRouter(t)

	err := router.Route("yoii-livecomm://oauth/myspace/callback?code=1")
	assert.Equal(t, autherrors.CodeProviderNotFound, autherrors.CodeOf(err))

	err = router.Route("yoii-livecomm://oauth/google/callback?code=1")
	sae, ok := autherrors.As(err)
	require.True(t, ok)
	assert.Equal(t, autherrors.CodeProviderNotFound, sae.Code)
	assert.Equal(t, domainauth.ProviderGoogle, sae.Provider)
}

func TestRoute_NothingPending(t *testing.T) {
	router, _, _, sink := newLineRouter(t)
	err := router.Route("yoii-livecomm://oauth/line/callback?access_token=x")
	assert.ErrorIs(t, err, ErrNoPendingFlow)

	callbacks := sink.named(metrics.CallbackCount)
	require.Len(t, callbacks, 1)
	assert.Equal(t, metrics.ResultNoop, callbacks[0].tags["result"])
}

func TestCancel(t *testing.T) {
	router, engine, browser, _ := newLineRouter(t)
	done := startFlow(engine)
	openedState(t, browser)

	require.NoError(t, router.Cancel(domainauth.ProviderLine))
	assert.True(t, autherrors.IsUserCancelled(awaitFlow(t, done).err))

	assert.Equal(t, autherrors.CodeProviderNotFound, autherrors.CodeOf(router.Cancel(domainauth.ProviderApple)))
}
