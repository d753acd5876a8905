package redis

import (
	"context"
	"time"
)

// GeoStoreInterface defines the interface for the driver geo index.
type GeoStoreInterface interface {
	Upsert(ctx context.Context, driverID string, lat, lng float64) error
	Remove(ctx context.Context, driverID string) error
	SearchNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyDriver, error)
	IsFresh(ctx context.Context, driverID string) (bool, error)
}

// CacheStoreInterface defines the interface for entity caching.
type CacheStoreInterface interface {
	GetDriver(ctx context.Context, driverID string) (*CachedDriver, error)
	SetDriver(ctx context.Context, driver *CachedDriver) error
	InvalidateDriver(ctx context.Context, driverID string) error
}

// IdempotencyStoreInterface defines the interface for idempotency snapshots.
type IdempotencyStoreInterface interface {
	Get(ctx context.Context, scope, key string) (*CachedResponse, error)
	Set(ctx context.Context, scope, key string, resp *CachedResponse) error
}

// RateLimitStoreInterface defines the interface for request rate limiting.
type RateLimitStoreInterface interface {
	Allow(ctx context.Context, bucket string, limit int, window time.Duration) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ GeoStoreInterface         = (*GeoStore)(nil)
	_ CacheStoreInterface       = (*CacheStore)(nil)
	_ IdempotencyStoreInterface = (*IdempotencyStore)(nil)
	_ RateLimitStoreInterface   = (*RateLimitStore)(nil)
)
