package worker

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/eventservices"
)

type TokenSource interface {
	Token(ctx context.Context) (eventmodels.SessionToken, error)
}

type SyncResult struct {
	Accounts eventmodels.AccountSnapshot
	Updated  bool
}

// AccountSyncJob pulls the account list from the platform into the snapshot cache.
type AccountSyncJob struct {
	tokens TokenSource
	client *eventservices.TopstepXClient
	cache  *eventservices.AccountSnapshotCache
}

func NewAccountSyncJob(tokens TokenSource, client *eventservices.TopstepXClient, cache *eventservices.AccountSnapshotCache) *AccountSyncJob {
	return &AccountSyncJob{
		tokens: tokens,
		client: client,
		cache:  cache,
	}
}

// Sync fetches accounts with the current token. A non-empty list replaces the
// cached snapshot; an empty list leaves it alone. Unusable responses return
// *eventmodels.SyncUnavailableError and the cache is not touched.
func (j *AccountSyncJob) Sync(ctx context.Context, onlyActive bool) (*SyncResult, error) {
	token, err := j.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, eventmodels.NoSessionTokenErr) {
			return nil, &eventmodels.SyncUnavailableError{Cause: err}
		}

		return nil, fmt.Errorf("AccountSyncJob.Sync: %w", err)
	}

	accounts, err := j.client.SearchAccounts(ctx, token, onlyActive)
	if err != nil {
		log.Warnf("AccountSyncJob.Sync: %v", err)
		return nil, err
	}

	result := &SyncResult{Accounts: accounts}

	if len(accounts) == 0 {
		log.Info("account search returned no accounts, keeping cached snapshot")
		return result, nil
	}

	if err := j.cache.Set(ctx, accounts); err != nil {
		return nil, fmt.Errorf("AccountSyncJob.Sync: %w", err)
	}

	result.Updated = true
	log.WithField("count", len(accounts)).Info("account snapshot updated")

	return result, nil
}
