package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists state in Redis. Keys are namespaced with a prefix so a
// shared instance can host more than one bot.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection before
// returning.
func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if prefix == "" {
		prefix = "stratus:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Read(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	if len(keys) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefix + key
	}

	values, err := s.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	result := make(map[string]json.RawMessage, len(keys))
	for i, value := range values {
		// MGet reports missing keys as nil
		str, ok := value.(string)
		if !ok {
			continue
		}
		result[keys[i]] = json.RawMessage(str)
	}
	return result, nil
}

func (s *RedisStore) Write(ctx context.Context, changes map[string]json.RawMessage) error {
	if len(changes) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for key, value := range changes {
		pipe.Set(ctx, s.prefix+key, []byte(value), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefix + key
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
