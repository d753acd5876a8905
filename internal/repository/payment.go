package repository

import (
	"context"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment by ID holding a row lock.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error)

	// GetByTripID retrieves the payment for a trip, or nil when none exists.
	GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error)

	// Update updates an existing payment.
	Update(ctx context.Context, payment *domain.Payment) error
}
