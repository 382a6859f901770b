package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"github.com/yoii-livecomm/socialauth/internal/testutil"
)

func TestStore_Contract(t *testing.T) {
	testutil.RunSessionStoreContract(t, func(*testing.T) ports.SessionStore { return New() })
}

func TestStore_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Set(ctx, "k", "v"), context.Canceled)
	require.ErrorIs(t, s.MultiRemove(ctx, []string{"k"}), context.Canceled)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentMultiSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			assert.NoError(t, s.MultiSet(ctx, []ports.KeyValue{{Key: "a", Value: v}, {Key: "b", Value: v}}))
		}(string(rune('0' + i)))
	}
	wg.Wait()

	a, _, err := s.Get(ctx, "a")
	require.NoError(t, err)
	b, _, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, a, b, "multi-key writes must not interleave")
	assert.Equal(t, 2, s.Len())
}
