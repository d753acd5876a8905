package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimitStore implements a fixed-window counter per bucket.
type RateLimitStore struct {
	client *redis.Client
}

// NewRateLimitStore creates a new RateLimitStore.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Allow increments the bucket's counter and reports whether the caller is
// still under limit for the current window. The window starts on the first
// hit.
func (s *RateLimitStore) Allow(ctx context.Context, bucket string, limit int, window time.Duration) (bool, error) {
	key := rateLimitPrefix + bucket

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
