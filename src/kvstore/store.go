// Package kvstore holds the shared key/value cache that every process reads
// credentials, the session token and the account snapshot from. Reads and
// writes of a single key are atomic; nothing above this layer locks.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jiaming2012/topstepx-broker/src/utils"
)

type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Close() error
}

// New builds the backend selected in cfg.
func New(ctx context.Context, cfg *utils.Config) (Store, error) {
	switch cfg.CacheBackend {
	case utils.CacheBackendMemory:
		return NewMemoryStore(), nil
	case utils.CacheBackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.CacheTimeout)
	default:
		return nil, fmt.Errorf("kvstore.New: unknown backend %q", cfg.CacheBackend)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
