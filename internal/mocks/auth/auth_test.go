package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

func TestMockAuthProvider_Defaults(t *testing.T) {
	provider := NewMockAuthProvider(domainauth.ProviderLine, "tok")
	ctx := context.Background()

	assert.Equal(t, domainauth.ProviderLine, provider.Provider())
	assert.Equal(t, domainauth.MethodWeb, provider.PreferredMethod())
	require.NoError(t, provider.Initialize(ctx))

	res, err := provider.Login(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token.AccessToken)
	assert.Equal(t, domainauth.ProviderLine, res.Provider)

	require.NoError(t, provider.Logout(ctx))
	assert.False(t, provider.IsLoggedIn(ctx))
	_, ok := provider.RefreshToken(ctx)
	assert.False(t, ok)

	assert.Equal(t, 1, provider.InitCalls())
	assert.Equal(t, 1, provider.LoginCalls())
	assert.Equal(t, 1, provider.LogoutCalls())
}

func TestMockAuthProvider_CustomFuncs(t *testing.T) {
	boom := errors.New("boom")
	provider := &MockAuthProvider{
		Tag:              domainauth.ProviderApple,
		Method:           domainauth.MethodNative,
		InitializeFunc:   func(context.Context) error { return boom },
		CurrentTokenFunc: func(context.Context) (string, bool) { return "cur", true },
	}
	ctx := context.Background()

	assert.ErrorIs(t, provider.Initialize(ctx), boom)
	assert.True(t, provider.IsLoggedIn(ctx))

	res, err := provider.Login(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.MethodNative, res.Method)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.MultiSet(ctx, []ports.KeyValue{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}))
	assert.Equal(t, []string{"a", "b"}, store.Keys())

	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, store.MultiRemove(ctx, []string{"a", "missing"}))
	assert.Equal(t, []string{"b"}, store.Keys())

	store.GetErr = errors.New("down")
	_, _, err = store.Get(ctx, "b")
	assert.Error(t, err)
}

func TestRecordingBrowser(t *testing.T) {
	b := NewRecordingBrowser(1)
	require.NoError(t, b.Open(context.Background(), "https://a"))
	require.NoError(t, b.Open(context.Background(), "https://b"), "full buffer drops instead of blocking")
	assert.Equal(t, "https://a", <-b.URLs)

	b.OpenFunc = func(context.Context, string) error { return errors.New("no display") }
	assert.Error(t, b.Open(context.Background(), "https://c"))
}

func TestStubWebFlow(t *testing.T) {
	flow := &StubWebFlow{Result: domainauth.SocialAuthResult{Provider: domainauth.ProviderGoogle}}
	res, err := flow.StartOAuthFlow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domainauth.ProviderGoogle, res.Provider)
	flow.Cancel()
	assert.Equal(t, 1, flow.Starts())
	assert.Equal(t, 1, flow.Cancels())
}
