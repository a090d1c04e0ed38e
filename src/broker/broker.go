// Package broker wires the session, cache and sync components over one
// key/value store. The server and the CLI both build on it.
package broker

import (
	"context"
	"fmt"

	"github.com/jiaming2012/topstepx-broker/src/eventservices"
	"github.com/jiaming2012/topstepx-broker/src/kvstore"
	"github.com/jiaming2012/topstepx-broker/src/utils"
	"github.com/jiaming2012/topstepx-broker/src/worker"
)

type Broker struct {
	Config      *utils.Config
	Store       kvstore.Store
	Credentials *eventservices.CredentialStore
	Client      *eventservices.TopstepXClient
	Sessions    *eventservices.SessionManager
	Cache       *eventservices.AccountSnapshotCache
	Sync        *worker.AccountSyncJob
}

// New connects to the configured store and builds the components on top of it.
func New(ctx context.Context, cfg *utils.Config) (*Broker, error) {
	store, err := kvstore.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("broker.New: failed to open store: %w", err)
	}

	return NewWithStore(cfg, store), nil
}

func NewWithStore(cfg *utils.Config, store kvstore.Store) *Broker {
	creds := eventservices.NewCredentialStore(store)
	cache := eventservices.NewAccountSnapshotCache(store)
	client := eventservices.NewTopstepXClient(cfg.BaseAPIURL, cfg.HTTPTimeout)
	sessions := eventservices.NewSessionManager(creds, client)

	return &Broker{
		Config:      cfg,
		Store:       store,
		Credentials: creds,
		Client:      client,
		Sessions:    sessions,
		Cache:       cache,
		Sync:        worker.NewAccountSyncJob(sessions, client, cache),
	}
}

func (b *Broker) Close() error {
	return b.Store.Close()
}
