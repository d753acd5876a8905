package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// AssignmentService owns the ride-to-driver binding and the driver's accept
// step. All multi-entity writes take row locks in ride, driver order so
// concurrent assignments serialize instead of deadlocking.
type AssignmentService struct {
	tx           repository.TxRunner
	geo          redis.GeoStoreInterface
	cache        redis.CacheStoreInterface
	bus          *eventbus.Bus
	notification *NotificationService
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	tx repository.TxRunner,
	geo redis.GeoStoreInterface,
	cache redis.CacheStoreInterface,
	bus *eventbus.Bus,
	notification *NotificationService,
) *AssignmentService {
	return &AssignmentService{
		tx:           tx,
		geo:          geo,
		cache:        cache,
		bus:          bus,
		notification: notification,
	}
}

// Assign binds a candidate driver to a MATCHING ride. The driver's status is
// re-checked under the row lock; the geo index only nominated the candidate.
func (s *AssignmentService) Assign(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var (
		assigned *domain.Ride
		driver   *domain.Driver
	)
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		ride, err := r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride.Status != domain.RideStatusMatching {
			if ride.Status == domain.RideStatusDriverAssigned {
				return ErrConcurrentlyAssigned
			}
			return ErrRideNotMatchable
		}

		driver, err = r.Drivers.GetByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if driver.Status != domain.DriverStatusAvailable {
			return ErrDriverUnavailable
		}

		if err := statemachine.Validate(statemachine.EntityRide, string(ride.Status), string(domain.RideStatusDriverAssigned)); err != nil {
			return err
		}

		now := time.Now()
		if err := r.Rides.AssignDriver(ctx, rideID, driverID, now); err != nil {
			if err == repository.ErrConflict {
				return ErrConcurrentlyAssigned
			}
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityRide, rideID, string(ride.Status), string(domain.RideStatusDriverAssigned))); err != nil {
			return err
		}

		ride.Status = domain.RideStatusDriverAssigned
		ride.AssignedDriverID = driverID
		ride.AssignedAt = now
		assigned = ride
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverAssigned, Payload: assigned})
	s.bus.Publish(eventbus.Event{Type: eventbus.EventRideUpdated, Payload: assigned})
	_ = s.notification.NotifyDriverAssigned(ctx, assigned, driver)

	return assigned, nil
}

// InitializeTrip is the driver's accept step: it creates the trip, moves the
// driver ON_TRIP and pulls the driver out of the matching index.
func (s *AssignmentService) InitializeTrip(ctx context.Context, rideID, driverID string) (*domain.Trip, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var (
		trip    *domain.Trip
		riderID string
	)
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		ride, err := r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if ride.Status != domain.RideStatusDriverAssigned {
			return ErrRideNotMatchable
		}
		if ride.AssignedDriverID != driverID {
			return ErrDriverNotAssignedToRide
		}

		driver, err := r.Drivers.GetByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if err := statemachine.Validate(statemachine.EntityDriver, string(driver.Status), string(domain.DriverStatusOnTrip)); err != nil {
			return err
		}

		now := time.Now()
		trip = &domain.Trip{
			ID:        uuid.New().String(),
			RideID:    rideID,
			DriverID:  driverID,
			Status:    domain.TripStatusCreated,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.Trips.Create(ctx, trip); err != nil {
			return err
		}
		if err := r.Drivers.UpdateStatus(ctx, driverID, domain.DriverStatusOnTrip); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityDriver, driverID, string(driver.Status), string(domain.DriverStatusOnTrip))); err != nil {
			return err
		}
		// The driver must leave the matching index before ON_TRIP
		// commits; a removal undone by rollback only costs a missed match.
		if err := s.geo.Remove(ctx, driverID); err != nil {
			return err
		}

		riderID = ride.RiderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateDriver(ctx, driverID)

	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverStatusChanged, Payload: map[string]any{
		"driver_id": driverID,
		"status":    domain.DriverStatusOnTrip,
	}})
	s.bus.Publish(eventbus.Event{Type: eventbus.EventTripAccepted, Payload: trip})
	_ = s.notification.NotifyTripAccepted(ctx, trip, riderID)

	return trip, nil
}
