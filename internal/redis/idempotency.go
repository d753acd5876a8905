package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL is how long a captured response stays replayable.
const DefaultIdempotencyTTL = 300 * time.Second

const idempotencyPrefix = "idem:"

// CachedResponse is the captured outcome of a successful write request.
type CachedResponse struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// IdempotencyStore persists first-response snapshots keyed by endpoint
// category and client idempotency key.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(scope, key string) string {
	return idempotencyPrefix + scope + ":" + key
}

// Get retrieves a previously captured response. A nil result with nil error
// means the key has not been seen.
func (s *IdempotencyStore) Get(ctx context.Context, scope, key string) (*CachedResponse, error) {
	data, err := s.client.Get(ctx, idempotencyKey(scope, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var resp CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Set captures a response for later replay.
func (s *IdempotencyStore) Set(ctx context.Context, scope, key string, resp *CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKey(scope, key), data, s.ttl).Err()
}
