package service

import (
	"context"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
)

// Matching defaults.
const (
	DefaultMatchRadiusKm = 5.0
	DefaultMatchLimit    = 5
)

// MatchingServiceInterface defines the matching service contract.
type MatchingServiceInterface interface {
	FindNearby(ctx context.Context, lat, lng float64, tier domain.RideTier) ([]redis.NearbyDriver, error)
}

// MatchingService produces candidate drivers for a pickup point. The geo
// index alone decides candidacy: a driver absent from it is never returned.
type MatchingService struct {
	geo      redis.GeoStoreInterface
	radiusKm float64
	limit    int
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(geo redis.GeoStoreInterface, radiusKm float64, limit int) *MatchingService {
	if radiusKm <= 0 {
		radiusKm = DefaultMatchRadiusKm
	}
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	return &MatchingService{geo: geo, radiusKm: radiusKm, limit: limit}
}

// FindNearby returns up to the configured limit of candidates around the
// pickup, nearest first. One geo call per invocation; the per-candidate
// status check happens later under the assignment transaction. The tier is
// accepted for future tier-aware filtering but does not narrow the search.
func (s *MatchingService) FindNearby(ctx context.Context, lat, lng float64, _ domain.RideTier) ([]redis.NearbyDriver, error) {
	return s.geo.SearchNearby(ctx, lat, lng, s.radiusKm, s.limit)
}

// Ensure MatchingService implements MatchingServiceInterface.
var _ MatchingServiceInterface = (*MatchingService)(nil)
