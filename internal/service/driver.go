package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// DriverService handles driver registration, presence and location.
type DriverService struct {
	driverRepo repository.DriverRepository
	tx         repository.TxRunner
	geo        redis.GeoStoreInterface
	cache      redis.CacheStoreInterface
	writer     *LocationWriter
	bus        *eventbus.Bus
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	tx repository.TxRunner,
	geo redis.GeoStoreInterface,
	cache redis.CacheStoreInterface,
	writer *LocationWriter,
	bus *eventbus.Bus,
) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		tx:         tx,
		geo:        geo,
		cache:      cache,
		writer:     writer,
		bus:        bus,
	}
}

// CreateDriverRequest contains the parameters for registering a driver.
type CreateDriverRequest struct {
	Name  string
	Phone string
	Lat   float64
	Lng   float64
}

// CreateDriver registers a new driver as AVAILABLE. When an initial position
// is supplied the driver enters the geo index immediately.
func (s *DriverService) CreateDriver(ctx context.Context, req CreateDriverRequest) (*domain.Driver, error) {
	if req.Name == "" {
		return nil, ErrInvalidDriverName
	}
	if req.Phone == "" {
		return nil, ErrInvalidDriverPhone
	}

	hasLocation := req.Lat != 0 || req.Lng != 0
	if hasLocation && (!isValidLatitude(req.Lat) || !isValidLongitude(req.Lng)) {
		return nil, ErrInvalidLocation
	}

	now := time.Now()
	driver := &domain.Driver{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Status:    domain.DriverStatusAvailable,
		Rating:    5.0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if hasLocation {
		driver.Lat = req.Lat
		driver.Lng = req.Lng
		driver.LocatedAt = now
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	if hasLocation {
		if err := s.geo.Upsert(ctx, driver.ID, req.Lat, req.Lng); err != nil {
			log.Printf("[DRIVER] geo upsert failed for driver %s: %v", driver.ID, err)
		}
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverCreated, Payload: driver})

	return driver, nil
}

// GetDriver retrieves a driver, reading through the cache.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if cached, err := s.cache.GetDriver(ctx, driverID); err == nil && cached != nil {
		return &domain.Driver{
			ID:     cached.ID,
			Name:   cached.Name,
			Phone:  cached.Phone,
			Status: domain.DriverStatus(cached.Status),
			Rating: cached.Rating,
			Lat:    cached.Lat,
			Lng:    cached.Lng,
		}, nil
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetDriver(ctx, &redis.CachedDriver{
		ID:     driver.ID,
		Name:   driver.Name,
		Phone:  driver.Phone,
		Status: string(driver.Status),
		Rating: driver.Rating,
		Lat:    driver.Lat,
		Lng:    driver.Lng,
	})

	return driver, nil
}

// ListDrivers retrieves drivers, optionally filtered by status.
func (s *DriverService) ListDrivers(ctx context.Context, status domain.DriverStatus, limit int) ([]*domain.Driver, error) {
	return s.driverRepo.List(ctx, status, limit)
}

// UpdateLocation is the high-frequency position path: the geo index is
// updated synchronously, the store write is coalesced through the location
// writer.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return ErrInvalidLocation
	}

	// The status gate reads through the short-TTL cache; reports arrive
	// too often to pay a pool round trip each.
	driver, err := s.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}

	now := time.Now()

	// Only AVAILABLE drivers belong in the matching index; positions from
	// ON_TRIP drivers still reach the store for tracking.
	if driver.Status == domain.DriverStatusAvailable {
		if err := s.geo.Upsert(ctx, driverID, lat, lng); err != nil {
			return err
		}
	}

	s.writer.Enqueue(driverID, lat, lng, now)

	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverLocationUpdated, Payload: map[string]any{
		"driver_id": driverID,
		"lat":       lat,
		"lng":       lng,
		"at":        now,
	}})

	return nil
}

// UpdateStatus transitions a driver between OFFLINE and AVAILABLE. ON_TRIP is
// owned by the trip lifecycle and cannot be requested here.
func (s *DriverService) UpdateStatus(ctx context.Context, driverID string, status domain.DriverStatus) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if status != domain.DriverStatusOffline && status != domain.DriverStatusAvailable {
		return nil, &statemachine.InvalidTransitionError{
			Entity:  statemachine.EntityDriver,
			From:    "",
			To:      string(status),
			Allowed: []string{string(domain.DriverStatusOffline), string(domain.DriverStatusAvailable)},
		}
	}

	var updated *domain.Driver
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		driver, err := r.Drivers.GetByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if driver.Status == status {
			updated = driver
			return nil
		}
		if err := statemachine.Validate(statemachine.EntityDriver, string(driver.Status), string(status)); err != nil {
			return err
		}
		if err := r.Drivers.UpdateStatus(ctx, driverID, status); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityDriver, driverID, string(driver.Status), string(status))); err != nil {
			return err
		}
		// The index removal must land before the commit: once the new
		// status is visible the driver cannot still be a candidate. A
		// removal followed by rollback only costs a missed match.
		if status != domain.DriverStatusAvailable {
			if err := s.geo.Remove(ctx, driverID); err != nil {
				return err
			}
		}
		driver.Status = status
		updated = driver
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-entry into the index may lag the commit; a late add is harmless
	// because assignment re-checks status under lock.
	if updated.Status == domain.DriverStatusAvailable && updated.HasLocation() {
		if err := s.geo.Upsert(ctx, driverID, updated.Lat, updated.Lng); err != nil {
			log.Printf("[DRIVER] geo upsert failed for driver %s: %v", driverID, err)
		}
	}

	_ = s.cache.InvalidateDriver(ctx, driverID)

	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverStatusChanged, Payload: updated})

	return updated, nil
}
