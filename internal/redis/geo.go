package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	driverGeoKey       = "drivers:geo"
	driverFreshPrefix  = "drivers:geo:fresh:"
	DefaultFreshnessTTL = 60 * time.Second
)

// NearbyDriver is one candidate returned from a geo search, nearest first.
type NearbyDriver struct {
	DriverID   string
	DistanceKm float64
}

// GeoStore maintains the driver geo index. The index is authoritative for
// matching candidacy: a driver absent from it is never matched.
type GeoStore struct {
	client       *redis.Client
	freshnessTTL time.Duration
}

// NewGeoStore creates a new GeoStore.
func NewGeoStore(client *redis.Client, freshnessTTL time.Duration) *GeoStore {
	if freshnessTTL <= 0 {
		freshnessTTL = DefaultFreshnessTTL
	}
	return &GeoStore{client: client, freshnessTTL: freshnessTTL}
}

// Upsert writes the driver's position with GEOADD and refreshes the
// per-driver freshness key.
func (s *GeoStore) Upsert(ctx context.Context, driverID string, lat, lng float64) error {
	if err := s.client.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return err
	}
	return s.client.Set(ctx, driverFreshPrefix+driverID, "1", s.freshnessTTL).Err()
}

// Remove deletes the driver from the geo index and drops its freshness key.
func (s *GeoStore) Remove(ctx context.Context, driverID string) error {
	if err := s.client.ZRem(ctx, driverGeoKey, driverID).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, driverFreshPrefix+driverID).Err()
}

// SearchNearby returns up to limit drivers within radiusKm of the pickup,
// sorted by distance ascending.
func (s *GeoStore) SearchNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyDriver, error) {
	results, err := s.client.GeoRadius(ctx, driverGeoKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
		Count:    limit,
	}).Result()
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyDriver, 0, len(results))
	for _, r := range results {
		nearby = append(nearby, NearbyDriver{
			DriverID:   r.Name,
			DistanceKm: r.Dist,
		})
	}
	return nearby, nil
}

// IsFresh reports whether the driver's position was reported within the
// freshness window.
func (s *GeoStore) IsFresh(ctx context.Context, driverID string) (bool, error) {
	n, err := s.client.Exists(ctx, driverFreshPrefix+driverID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
