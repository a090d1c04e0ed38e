package eventservices

import (
	"context"
	"fmt"

	"github.com/jiaming2012/topstepx-broker/src/eventmodels"
	"github.com/jiaming2012/topstepx-broker/src/kvstore"
)

// CredentialStore keeps the single credential pair and the active session
// token as plain strings in the shared cache.
type CredentialStore struct {
	store kvstore.Store
}

func NewCredentialStore(store kvstore.Store) *CredentialStore {
	return &CredentialStore{store: store}
}

func (s *CredentialStore) SaveCredential(ctx context.Context, credential eventmodels.Credential) error {
	if err := s.store.Set(ctx, eventmodels.UsernameCacheKey, credential.Username); err != nil {
		return fmt.Errorf("CredentialStore.SaveCredential: failed to store username: %w", err)
	}

	if err := s.store.Set(ctx, eventmodels.APIKeyCacheKey, credential.APIKey); err != nil {
		return fmt.Errorf("CredentialStore.SaveCredential: failed to store api key: %w", err)
	}

	return nil
}

// GetCredential returns NoCredentialsErr unless both halves of the pair are stored.
func (s *CredentialStore) GetCredential(ctx context.Context) (*eventmodels.Credential, error) {
	username, found, err := s.store.Get(ctx, eventmodels.UsernameCacheKey)
	if err != nil {
		return nil, fmt.Errorf("CredentialStore.GetCredential: %w", err)
	}

	if !found || username == "" {
		return nil, eventmodels.NoCredentialsErr
	}

	apiKey, found, err := s.store.Get(ctx, eventmodels.APIKeyCacheKey)
	if err != nil {
		return nil, fmt.Errorf("CredentialStore.GetCredential: %w", err)
	}

	if !found || apiKey == "" {
		return nil, eventmodels.NoCredentialsErr
	}

	return &eventmodels.Credential{
		Username: username,
		APIKey:   apiKey,
	}, nil
}

func (s *CredentialStore) GetSessionToken(ctx context.Context) (eventmodels.SessionToken, error) {
	val, found, err := s.store.Get(ctx, eventmodels.SessionTokenCacheKey)
	if err != nil {
		return eventmodels.SessionToken{}, fmt.Errorf("CredentialStore.GetSessionToken: %w", err)
	}

	if !found || val == "" {
		return eventmodels.SessionToken{}, eventmodels.NoSessionTokenErr
	}

	return eventmodels.SessionToken{Value: val}, nil
}

func (s *CredentialStore) SetSessionToken(ctx context.Context, token eventmodels.SessionToken) error {
	if err := s.store.Set(ctx, eventmodels.SessionTokenCacheKey, token.Value); err != nil {
		return fmt.Errorf("CredentialStore.SetSessionToken: %w", err)
	}

	return nil
}
