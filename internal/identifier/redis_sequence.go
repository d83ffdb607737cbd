package identifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSequence reserves values with INCR, giving increment-and-reserve
// semantics shared across service instances.
type RedisSequence struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSequence builds a sequence source on the given client.
func NewRedisSequence(client *redis.Client, keyPrefix string) *RedisSequence {
	if keyPrefix == "" {
		keyPrefix = "seq"
	}
	return &RedisSequence{client: client, keyPrefix: keyPrefix}
}

// Next reserves the next value for scope.
func (s *RedisSequence) Next(ctx context.Context, scope string) (uint64, error) {
	key := fmt.Sprintf("%s:%s", s.keyPrefix, scope)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("reserve sequence %s: %w", scope, err)
	}
	return uint64(n), nil
}
