package session

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Alturino/kickshopping/internal/errors"
)

const KeySessionPrefix = "kickshopping:session:"

// RedisStore keeps the values in one redis hash per namespace, so several CLI
// profiles can share a redis instance.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{client: client, key: KeySessionPrefix + namespace}
}

func (s *RedisStore) Get(c context.Context, key string) (string, error) {
	v, err := s.client.HGet(c, s.key, key).Result()
	if stdErrors.Is(err, redis.Nil) {
		return "", errors.ErrStoreKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed getting key=%s from redis with error=%w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(c context.Context, key string, value string) error {
	if err := s.client.HSet(c, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed setting key=%s in redis with error=%w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(c context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(c, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("failed deleting keys=%v from redis with error=%w", keys, err)
	}
	return nil
}

func (s *RedisStore) Clear(c context.Context) error {
	if err := s.client.Del(c, s.key).Err(); err != nil {
		return fmt.Errorf("failed clearing session=%s from redis with error=%w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
