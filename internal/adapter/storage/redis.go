package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.ClosableStateStore = (*RedisStore)(nil)

const redisKeyPrefix = "storefront"

// RedisStore keeps state in redis under "storefront:<profile>:<key>".
// Keys never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, addr, profile string) (*RedisStore, error) {
	const op = "NewRedisStore"

	client := redis.NewClient(&redis.Options{Addr: addr})
	err := ping(ctx, op, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisStoreFromClient(client, profile), nil
}

func NewRedisStoreFromClient(client *redis.Client, profile string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: redisKeyPrefix + ":" + profile + ":",
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "RedisStore.Get"

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "RedisStore.Set"

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	const op = "RedisStore.Delete"

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Close() {
	const op = "RedisStore.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")
	if err := s.client.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}
