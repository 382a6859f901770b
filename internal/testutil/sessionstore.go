package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// RunSessionStoreContract exercises the behaviour every ports.SessionStore must share.
// newStore must return an empty store scoped to the subtest.
func RunSessionStoreContract(t *testing.T, newStore func(t *testing.T) ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is absent without error", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, "@nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get and overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "@app_token", "a1"))
		v, ok, err := s.Get(ctx, "@app_token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "a1", v)

		require.NoError(t, s.Set(ctx, "@app_token", "a2"))
		v, _, err = s.Get(ctx, "@app_token")
		require.NoError(t, err)
		assert.Equal(t, "a2", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", ""))
		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("values round trip verbatim", func(t *testing.T) {
		s := newStore(t)
		const profile = `{"id":"u1","name":"ชื่อ ทดสอบ","email":"a@b.co"}`
		require.NoError(t, s.Set(ctx, "@user_profile", profile))
		v, _, err := s.Get(ctx, "@user_profile")
		require.NoError(t, err)
		assert.Equal(t, profile, v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", "v"))
		require.NoError(t, s.Remove(ctx, "k"))
		require.NoError(t, s.Remove(ctx, "k"))
		_, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("multi set and multi remove", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "@auth_provider", "line"))
		require.NoError(t, s.MultiSet(ctx, []ports.KeyValue{
			{Key: "@app_token", Value: "app"},
			{Key: "@auth_provider", Value: "google"},
			{Key: "@social_token", Value: "soc"},
		}))

		for key, want := range map[string]string{"@app_token": "app", "@auth_provider": "google", "@social_token": "soc"} {
			v, ok, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok, key)
			assert.Equal(t, want, v, key)
		}

		require.NoError(t, s.MultiRemove(ctx, []string{"@app_token", "@social_token", "@never_set"}))
		_, ok, err := s.Get(ctx, "@app_token")
		require.NoError(t, err)
		assert.False(t, ok)
		v, ok, err := s.Get(ctx, "@auth_provider")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "google", v)
	})

	t.Run("empty batches are no-ops", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.MultiSet(ctx, nil))
		require.NoError(t, s.MultiRemove(ctx, nil))
	})
}
