package repository

import (
	"context"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride by ID holding a row lock.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// List retrieves rides, optionally filtered by status, newest first.
	List(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error)

	// ListMatching retrieves MATCHING rides created after the cutoff, oldest
	// first. This is the dispatch worker's poll query.
	ListMatching(ctx context.Context, createdAfter time.Time, limit int) ([]*domain.Ride, error)

	// UpdateStatus updates only the status of a ride.
	UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error

	// AssignDriver marks the ride DRIVER_ASSIGNED and binds the driver.
	// Returns ErrConflict when the driver already holds a live assignment.
	AssignDriver(ctx context.Context, id, driverID string, at time.Time) error

	// MarkCancelled records cancellation time and reason alongside the status.
	MarkCancelled(ctx context.Context, id, reason string, at time.Time) error
}
