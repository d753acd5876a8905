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

// RideService handles ride intake and lifecycle outside of assignment.
type RideService struct {
	rideRepo     repository.RideRepository
	tripRepo     repository.TripRepository
	tx           repository.TxRunner
	matching     MatchingServiceInterface
	bus          *eventbus.Bus
	notification *NotificationService
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	tripRepo repository.TripRepository,
	tx repository.TxRunner,
	matching MatchingServiceInterface,
	bus *eventbus.Bus,
	notification *NotificationService,
) *RideService {
	return &RideService{
		rideRepo:     rideRepo,
		tripRepo:     tripRepo,
		tx:           tx,
		matching:     matching,
		bus:          bus,
		notification: notification,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	RiderID         string
	PickupLat       float64
	PickupLng       float64
	DropLat         float64
	DropLng         float64
	Tier            domain.RideTier
	PaymentMethod   domain.PaymentMethod
	SurgeMultiplier float64 // optional, defaults to 1.0
}

// CreateRideResponse contains the result of ride intake. Candidates is an
// advisory snapshot; the dispatch worker owns the actual assignment.
type CreateRideResponse struct {
	Ride       *domain.Ride
	Candidates []redis.NearbyDriver
}

// CreateRide validates and persists a new ride in MATCHING state. Matching
// itself happens asynchronously; a candidate lookup failure here is logged
// and never fails the intake.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*CreateRideResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	surge := req.SurgeMultiplier
	if surge == 0 {
		surge = 1.0
	}
	method, _ := ValidatePaymentMethod(string(req.PaymentMethod))

	now := time.Now()
	ride := &domain.Ride{
		ID:              uuid.New().String(),
		RiderID:         req.RiderID,
		PickupLat:       req.PickupLat,
		PickupLng:       req.PickupLng,
		DropLat:         req.DropLat,
		DropLng:         req.DropLng,
		Tier:            req.Tier,
		PaymentMethod:   method,
		Status:          domain.RideStatusMatching,
		SurgeMultiplier: surge,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	candidates, err := s.matching.FindNearby(ctx, req.PickupLat, req.PickupLng, req.Tier)
	if err != nil {
		log.Printf("[RIDE] candidate lookup failed for ride %s: %v", ride.ID, err)
		candidates = nil
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventRideCreated, Payload: ride})

	return &CreateRideResponse{Ride: ride, Candidates: candidates}, nil
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

// ListRides retrieves rides, optionally filtered by status.
func (s *RideService) ListRides(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	return s.rideRepo.List(ctx, status, limit)
}

// CancelRide cancels a ride that has not produced a trip yet. A ride whose
// driver has already accepted must be cancelled through the trip instead.
func (s *RideService) CancelRide(ctx context.Context, rideID, reason string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	var cancelled *domain.Ride
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		ride, err := r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}

		if ride.Status == domain.RideStatusDriverAssigned {
			trip, err := r.Trips.GetByRideID(ctx, rideID)
			if err != nil && err != repository.ErrNotFound {
				return err
			}
			if trip != nil && !statemachine.IsTerminal(statemachine.EntityTrip, string(trip.Status)) {
				return ErrRideCannotBeCancelled
			}
		}

		if err := statemachine.Validate(statemachine.EntityRide, string(ride.Status), string(domain.RideStatusCancelled)); err != nil {
			return err
		}

		now := time.Now()
		if err := r.Rides.MarkCancelled(ctx, rideID, reason, now); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityRide, rideID, string(ride.Status), string(domain.RideStatusCancelled))); err != nil {
			return err
		}

		ride.Status = domain.RideStatusCancelled
		ride.CancelledAt = now
		ride.CancelReason = reason
		cancelled = ride
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventRideUpdated, Payload: cancelled})
	_ = s.notification.NotifyRideCancelled(ctx, cancelled, reason)

	return cancelled, nil
}

// ExpireRide moves a MATCHING ride to EXPIRED. Called by the dispatch worker
// when the match window elapses with no candidates.
func (s *RideService) ExpireRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	var expired *domain.Ride
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		ride, err := r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}
		if err := statemachine.Validate(statemachine.EntityRide, string(ride.Status), string(domain.RideStatusExpired)); err != nil {
			return err
		}
		if err := r.Rides.UpdateStatus(ctx, rideID, domain.RideStatusExpired); err != nil {
			return err
		}
		if err := r.Audit.Record(ctx, newTransition(statemachine.EntityRide, rideID, string(ride.Status), string(domain.RideStatusExpired))); err != nil {
			return err
		}
		ride.Status = domain.RideStatusExpired
		expired = ride
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventRideUpdated, Payload: expired})
	_ = s.notification.NotifyRideExpired(ctx, expired)

	return expired, nil
}

func (s *RideService) validateCreateRequest(req CreateRideRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DropLat) || !isValidLongitude(req.DropLng) {
		return ErrInvalidDropLocation
	}
	if _, ok := domain.RateForTier(req.Tier); !ok {
		return ErrInvalidTier
	}
	if _, err := ValidatePaymentMethod(string(req.PaymentMethod)); err != nil {
		return err
	}
	if req.SurgeMultiplier != 0 && req.SurgeMultiplier < 1.0 {
		return ErrInvalidSurgeMultiplier
	}
	return nil
}

// ValidatePaymentMethod validates a payment method string. An empty method
// defaults to CASH.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case domain.PaymentMethodCash, domain.PaymentMethodCard,
		domain.PaymentMethodWallet, domain.PaymentMethodUPI:
		return domain.PaymentMethod(method), nil
	case "":
		return domain.PaymentMethodCash, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
