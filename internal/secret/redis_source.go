package secret

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSource fetches secret payloads from the managed secret store backed by
// Redis. An absent key resolves to an empty payload, not an error, so the
// resolver can report the configuration failure uniformly.
type RedisSource struct {
	client *redis.Client
}

// NewRedisSource wraps an existing Redis client.
func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{client: client}
}

// Get returns the payload stored under ref.
func (s *RedisSource) Get(ctx context.Context, ref string) (string, error) {
	value, err := s.client.Get(ctx, ref).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
