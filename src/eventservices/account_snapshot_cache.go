package eventservices

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/kvstore"
)

// AccountSnapshotCache is a single slot holding the latest account list as JSON.
type AccountSnapshotCache struct {
	store kvstore.Store
}

func NewAccountSnapshotCache(store kvstore.Store) *AccountSnapshotCache {
	return &AccountSnapshotCache{store: store}
}

// Set replaces the stored snapshot with one write.
func (c *AccountSnapshotCache) Set(ctx context.Context, accounts eventmodels.AccountSnapshot) error {
	if accounts == nil {
		accounts = eventmodels.AccountSnapshot{}
	}

	b, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("AccountSnapshotCache.Set: failed to marshal accounts: %w", err)
	}

	if err := c.store.Set(ctx, eventmodels.AccountsCacheKey, string(b)); err != nil {
		return fmt.Errorf("AccountSnapshotCache.Set: %w", err)
	}

	return nil
}

// Get returns the stored snapshot, or def if nothing was ever stored.
func (c *AccountSnapshotCache) Get(ctx context.Context, def eventmodels.AccountSnapshot) (eventmodels.AccountSnapshot, error) {
	val, found, err := c.store.Get(ctx, eventmodels.AccountsCacheKey)
	if err != nil {
		return def, fmt.Errorf("AccountSnapshotCache.Get: %w", err)
	}

	if !found {
		return def, nil
	}

	var accounts eventmodels.AccountSnapshot
	if err := json.Unmarshal([]byte(val), &accounts); err != nil {
		return def, fmt.Errorf("AccountSnapshotCache.Get: failed to decode stored accounts: %w", err)
	}

	if accounts == nil {
		accounts = eventmodels.AccountSnapshot{}
	}

	return accounts, nil
}
