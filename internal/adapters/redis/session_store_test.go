package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"github.com/yoii-livecomm/socialauth/internal/testutil"
)

func TestSessionStore_Contract(t *testing.T) {
	testutil.RunSessionStoreContract(t, func(t *testing.T) ports.SessionStore {
		return NewSessionStore(testutil.SetupTestRedis(t))
	})
}

func TestSessionStore_KeysArePrefixed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewSessionStoreWithPrefix(client, "tenant-a:")
	ctx := context.Background()
	require.NoError(t, store.MultiSet(ctx, []ports.KeyValue{
		{Key: "@app_token", Value: "a"},
		{Key: "@auth_provider", Value: "line"},
	}))

	got, err := mr.Get("tenant-a:@app_token")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	assert.False(t, mr.Exists("@app_token"))

	other := NewSessionStore(client)
	_, ok, err := other.Get(ctx, "@app_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.MultiRemove(ctx, []string{"@app_token", "@auth_provider"}))
	assert.Empty(t, mr.Keys())
}

func TestSessionStore_NoExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewSessionStore(client)
	require.NoError(t, store.Set(context.Background(), "@refresh_token", "r"))
	assert.Zero(t, mr.TTL(DefaultPrefix+"@refresh_token"))
}

func TestSessionStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewSessionStore(client)
	mr.Close()

	ctx := context.Background()
	_, _, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get")
	require.Error(t, store.MultiSet(ctx, []ports.KeyValue{{Key: "k", Value: "v"}}))
	require.Error(t, store.MultiRemove(ctx, []string{"k"}))
}
