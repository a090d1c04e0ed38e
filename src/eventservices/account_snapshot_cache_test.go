package eventservices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/kvstore"
)

func TestAccountSnapshotCache(t *testing.T) {
	ctx := context.Background()

	t.Run("get before set returns the default", func(t *testing.T) {
		cache := NewAccountSnapshotCache(kvstore.NewMemoryStore())
		def := eventmodels.AccountSnapshot{{"id": "default"}}

		accounts, err := cache.Get(ctx, def)
		require.NoError(t, err)
		require.Equal(t, def, accounts)
	})

	t.Run("round trip", func(t *testing.T) {
		cache := NewAccountSnapshotCache(kvstore.NewMemoryStore())
		snapshot := eventmodels.AccountSnapshot{
			{"id": float64(1), "balance": float64(1000), "status": "active"},
			{"id": float64(2), "balance": 50.5, "status": "demo", "canTrade": false},
		}

		require.NoError(t, cache.Set(ctx, snapshot))

		accounts, err := cache.Get(ctx, nil)
		require.NoError(t, err)
		require.Equal(t, snapshot, accounts)
	})

	t.Run("set replaces wholesale", func(t *testing.T) {
		cache := NewAccountSnapshotCache(kvstore.NewMemoryStore())

		require.NoError(t, cache.Set(ctx, eventmodels.AccountSnapshot{{"id": float64(1)}, {"id": float64(2)}}))
		require.NoError(t, cache.Set(ctx, eventmodels.AccountSnapshot{{"id": float64(3)}}))

		accounts, err := cache.Get(ctx, nil)
		require.NoError(t, err)
		require.Equal(t, eventmodels.AccountSnapshot{{"id": float64(3)}}, accounts)
	})

	t.Run("stored as a json array under accounts", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		cache := NewAccountSnapshotCache(store)

		require.NoError(t, cache.Set(ctx, nil))

		val, found, err := store.Get(ctx, eventmodels.AccountsCacheKey)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "[]", val)
	})

	t.Run("corrupt value is an error", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, eventmodels.AccountsCacheKey, "{not json"))

		def := eventmodels.AccountSnapshot{}
		accounts, err := NewAccountSnapshotCache(store).Get(ctx, def)
		require.Error(t, err)
		require.Equal(t, def, accounts)
	})
}
