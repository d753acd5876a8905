package repository

import (
	"context"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip. Returns ErrConflict when the ride already
	// has a trip or the driver already holds a non-terminal trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByIDForUpdate retrieves a trip by ID holding a row lock.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error)

	// GetByRideID retrieves the trip created for a ride, if any.
	GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error)

	// GetActiveByDriverID retrieves the driver's non-terminal trip, or nil.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error
}
