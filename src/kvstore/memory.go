package kvstore

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Values never expire.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	val, found := s.cache.Get(key)
	if !found {
		return "", false, nil
	}

	return val.(string), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
