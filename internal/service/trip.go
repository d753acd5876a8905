package service

import (
	"context"
	"log"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// Trip end input bounds.
const (
	MaxTripDistanceKm  = 1000.0
	MaxTripDurationSec = 86400
)

// TripService handles the trip lifecycle from accept to receipt.
type TripService struct {
	tripRepo     repository.TripRepository
	rideRepo     repository.RideRepository
	driverRepo   repository.DriverRepository
	paymentRepo  repository.PaymentRepository
	tx           repository.TxRunner
	geo          redis.GeoStoreInterface
	cache        redis.CacheStoreInterface
	bus          *eventbus.Bus
	notification *NotificationService
	payments     *PaymentService
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	paymentRepo repository.PaymentRepository,
	tx repository.TxRunner,
	geo redis.GeoStoreInterface,
	cache redis.CacheStoreInterface,
	bus *eventbus.Bus,
	notification *NotificationService,
	payments *PaymentService,
) *TripService {
	return &TripService{
		tripRepo:     tripRepo,
		rideRepo:     rideRepo,
		driverRepo:   driverRepo,
		paymentRepo:  paymentRepo,
		tx:           tx,
		geo:          geo,
		cache:        cache,
		bus:          bus,
		notification: notification,
		payments:     payments,
	}
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, tripID)
}

// StartTrip moves a trip to STARTED. Resuming a PAUSED trip keeps the
// original start time.
func (s *TripService) StartTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var started *domain.Trip
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if err := statemachine.Validate(statemachine.EntityTrip, string(trip.Status), string(domain.TripStatusStarted)); err != nil {
			return err
		}

		from := trip.Status
		trip.Status = domain.TripStatusStarted
		if trip.StartedAt.IsZero() {
			trip.StartedAt = time.Now()
		}
		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityTrip, tripID, string(from), string(trip.Status))); err != nil {
			return err
		}
		started = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventTripStarted, Payload: started})

	return started, nil
}

// PauseTrip moves a STARTED trip to PAUSED.
func (s *TripService) PauseTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var paused *domain.Trip
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if err := statemachine.Validate(statemachine.EntityTrip, string(trip.Status), string(domain.TripStatusPaused)); err != nil {
			return err
		}

		from := trip.Status
		trip.Status = domain.TripStatusPaused
		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityTrip, tripID, string(from), string(trip.Status))); err != nil {
			return err
		}
		paused = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paused, nil
}

// EndTripRequest carries the driver-reported trip totals. Nil fields mean
// unreported: duration falls back to wall clock since start, distance to
// zero.
type EndTripRequest struct {
	TripID      string
	DistanceKm  *float64
	DurationSec *int64
}

// EndTrip finishes a trip. Trip ENDED, ride COMPLETED and driver AVAILABLE
// commit atomically, then the payment pipeline is kicked off.
func (s *TripService) EndTrip(ctx context.Context, req EndTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.DistanceKm != nil && (*req.DistanceKm < 0 || *req.DistanceKm > MaxTripDistanceKm) {
		return nil, ErrInvalidDistance
	}
	if req.DurationSec != nil && (*req.DurationSec < 0 || *req.DurationSec > MaxTripDurationSec) {
		return nil, ErrInvalidDuration
	}

	var (
		ended  *domain.Trip
		ride   *domain.Ride
		driver *domain.Driver
	)
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, req.TripID)
		if err != nil {
			return err
		}
		if err := statemachine.Validate(statemachine.EntityTrip, string(trip.Status), string(domain.TripStatusEnded)); err != nil {
			return err
		}

		ride, err = r.Rides.GetByIDForUpdate(ctx, trip.RideID)
		if err != nil {
			return err
		}
		driver, err = r.Drivers.GetByIDForUpdate(ctx, trip.DriverID)
		if err != nil {
			return err
		}

		now := time.Now()

		distance := trip.DistanceKm
		if req.DistanceKm != nil {
			distance = *req.DistanceKm
		}
		var duration int64
		switch {
		case req.DurationSec != nil:
			duration = *req.DurationSec
		case !trip.StartedAt.IsZero():
			duration = int64(now.Sub(trip.StartedAt).Seconds())
		}
		if duration < 0 {
			duration = 0
		}

		baseFare, totalFare, ok := domain.ComputeFare(ride.Tier, distance, duration, ride.SurgeMultiplier)
		if !ok {
			return ErrInvalidTier
		}

		tripFrom := trip.Status
		trip.Status = domain.TripStatusEnded
		trip.EndedAt = now
		trip.DistanceKm = distance
		trip.DurationSec = duration
		trip.BaseFare = baseFare
		trip.TotalFare = totalFare
		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}

		if err := statemachine.Validate(statemachine.EntityRide, string(ride.Status), string(domain.RideStatusCompleted)); err != nil {
			return err
		}
		if err := r.Rides.UpdateStatus(ctx, ride.ID, domain.RideStatusCompleted); err != nil {
			return err
		}

		if err := statemachine.Validate(statemachine.EntityDriver, string(driver.Status), string(domain.DriverStatusAvailable)); err != nil {
			return err
		}
		if err := r.Drivers.UpdateStatus(ctx, driver.ID, domain.DriverStatusAvailable); err != nil {
			return err
		}

		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityTrip, trip.ID, string(tripFrom), string(domain.TripStatusEnded))); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityRide, ride.ID, string(ride.Status), string(domain.RideStatusCompleted))); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityDriver, driver.ID, string(driver.Status), string(domain.DriverStatusAvailable))); err != nil {
			return err
		}

		ride.Status = domain.RideStatusCompleted
		driver.Status = domain.DriverStatusAvailable
		ended = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The driver is matchable again once a position exists.
	if driver.HasLocation() {
		if err := s.geo.Upsert(ctx, driver.ID, driver.Lat, driver.Lng); err != nil {
			log.Printf("[TRIP] geo upsert failed for driver %s: %v", driver.ID, err)
		}
	}
	_ = s.cache.InvalidateDriver(ctx, driver.ID)

	s.bus.Publish(eventbus.Event{Type: eventbus.EventTripEnded, Payload: ended})
	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverStatusChanged, Payload: driver})
	s.bus.Publish(eventbus.Event{Type: eventbus.EventRideUpdated, Payload: ride})
	_ = s.notification.NotifyTripEnded(ctx, ended, ride.RiderID, ended.TotalFare)

	// Payment creation is idempotent by trip; a failure here is retried by
	// calling the payment endpoint.
	if s.payments != nil {
		if _, err := s.payments.CreatePayment(ctx, ended.ID); err != nil {
			log.Printf("[TRIP] payment creation failed for trip %s: %v", ended.ID, err)
		}
	}

	return ended, nil
}

// CancelTrip aborts a non-terminal trip, cancelling the ride and freeing the
// driver in the same transaction.
func (s *TripService) CancelTrip(ctx context.Context, tripID, reason string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var (
		cancelled *domain.Trip
		ride      *domain.Ride
		driver    *domain.Driver
	)
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if err := statemachine.Validate(statemachine.EntityTrip, string(trip.Status), string(domain.TripStatusCancelled)); err != nil {
			return err
		}

		ride, err = r.Rides.GetByIDForUpdate(ctx, trip.RideID)
		if err != nil {
			return err
		}
		driver, err = r.Drivers.GetByIDForUpdate(ctx, trip.DriverID)
		if err != nil {
			return err
		}

		now := time.Now()
		tripFrom := trip.Status
		trip.Status = domain.TripStatusCancelled
		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}

		if err := statemachine.Validate(statemachine.EntityRide, string(ride.Status), string(domain.RideStatusCancelled)); err != nil {
			return err
		}
		if err := r.Rides.MarkCancelled(ctx, ride.ID, reason, now); err != nil {
			return err
		}

		if err := statemachine.Validate(statemachine.EntityDriver, string(driver.Status), string(domain.DriverStatusAvailable)); err != nil {
			return err
		}
		if err := r.Drivers.UpdateStatus(ctx, driver.ID, domain.DriverStatusAvailable); err != nil {
			return err
		}

		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityTrip, trip.ID, string(tripFrom), string(domain.TripStatusCancelled))); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityRide, ride.ID, string(ride.Status), string(domain.RideStatusCancelled))); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityDriver, driver.ID, string(driver.Status), string(domain.DriverStatusAvailable))); err != nil {
			return err
		}

		ride.Status = domain.RideStatusCancelled
		ride.CancelledAt = now
		ride.CancelReason = reason
		driver.Status = domain.DriverStatusAvailable
		cancelled = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	if driver.HasLocation() {
		if err := s.geo.Upsert(ctx, driver.ID, driver.Lat, driver.Lng); err != nil {
			log.Printf("[TRIP] geo upsert failed for driver %s: %v", driver.ID, err)
		}
	}
	_ = s.cache.InvalidateDriver(ctx, driver.ID)

	s.bus.Publish(eventbus.Event{Type: eventbus.EventRideUpdated, Payload: ride})
	s.bus.Publish(eventbus.Event{Type: eventbus.EventDriverStatusChanged, Payload: driver})
	_ = s.notification.NotifyRideCancelled(ctx, ride, reason)

	return cancelled, nil
}

// Receipt produces the read-only receipt for an ended trip.
func (s *TripService) Receipt(ctx context.Context, tripID string) (*domain.Receipt, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusEnded {
		return nil, ErrReceiptNotAvailable
	}

	ride, err := s.rideRepo.GetByID(ctx, trip.RideID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}

	receipt := &domain.Receipt{
		TripID:          trip.ID,
		RideID:          ride.ID,
		DriverID:        driver.ID,
		DriverName:      driver.Name,
		RiderID:         ride.RiderID,
		PickupLat:       ride.PickupLat,
		PickupLng:       ride.PickupLng,
		DropLat:         ride.DropLat,
		DropLng:         ride.DropLng,
		Tier:            ride.Tier,
		DistanceKm:      trip.DistanceKm,
		DurationSec:     trip.DurationSec,
		BaseFare:        trip.BaseFare,
		SurgeMultiplier: ride.SurgeMultiplier,
		TotalFare:       trip.TotalFare,
		PaymentMethod:   ride.PaymentMethod,
		StartedAt:       trip.StartedAt,
		EndedAt:         trip.EndedAt,
		GeneratedAt:     time.Now(),
	}

	payment, err := s.paymentRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		receipt.PaymentStatus = payment.Status
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventTripReceipt, Payload: receipt})

	return receipt, nil
}
