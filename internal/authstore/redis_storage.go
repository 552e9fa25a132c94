package authstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage 键值保存在 Redis，键名带 prefix 以便与其他数据共存
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStorage(rdb *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{rdb: rdb, prefix: prefix}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("authstore: redis get %q: %w", key, err)
	}
	return v, nil
}

// Set 不设置过期时间，与 localStorage 语义一致
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("authstore: redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("authstore: redis del %q: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
