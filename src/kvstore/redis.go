package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStore connects to the redis instance at url (redis://host:port/db)
// and pings it once.
func NewRedisStore(ctx context.Context, url string, timeout time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("NewRedisStore: invalid redis url: %w", err)
	}

	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}

	store := &RedisStore{
		client:  redis.NewClient(opts),
		timeout: timeout,
	}

	pingCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := store.client.Ping(pingCtx).Err(); err != nil {
		store.client.Close()
		return nil, fmt.Errorf("NewRedisStore: failed to ping %s: %w", opts.Addr, err)
	}

	log.Infof("connected to redis at %s (db %d)", opts.Addr, opts.DB)

	return store, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("RedisStore.Get: %s: %w", key, err)
	}

	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("RedisStore.Set: %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
