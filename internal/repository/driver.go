package repository

import (
	"context"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create persists a new driver. Returns ErrConflict on a duplicate phone.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByIDForUpdate retrieves a driver by ID holding a row lock. Only
	// meaningful on a transaction-scoped repository.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error)

	// List retrieves drivers, optionally filtered by status.
	List(ctx context.Context, status domain.DriverStatus, limit int) ([]*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateLocation persists the last-known coordinate of a driver.
	UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error
}
