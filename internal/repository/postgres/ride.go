package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, rider_id, pickup_lat, pickup_lng, drop_lat, drop_lng, tier, payment_method, status, surge_multiplier, assigned_driver_id, assigned_at, cancelled_at, cancel_reason, created_at, updated_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider_id, pickup_lat, pickup_lng, drop_lat, drop_lng, tier, payment_method, status, surge_multiplier, assigned_driver_id, assigned_at, cancelled_at, cancel_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	surge := ride.SurgeMultiplier
	if surge < 1.0 {
		surge = 1.0
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		ride.PickupLat,
		ride.PickupLng,
		ride.DropLat,
		ride.DropLng,
		ride.Tier,
		ride.PaymentMethod,
		ride.Status,
		surge,
		nullString(ride.AssignedDriverID),
		nullTime(ride.AssignedAt),
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.CreatedAt,
		ride.UpdatedAt,
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride by ID holding a row lock.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// List retrieves rides, optionally filtered by status, newest first.
func (r *RideRepository) List(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		if status != "" {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
	}
	return r.scanMany(ctx, query, args...)
}

// ListMatching retrieves MATCHING rides created after the cutoff, oldest first.
func (r *RideRepository) ListMatching(ctx context.Context, createdAfter time.Time, limit int) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = $1 AND created_at > $2
		ORDER BY created_at ASC
		LIMIT $3
	`
	return r.scanMany(ctx, query, domain.RideStatusMatching, createdAfter, limit)
}

// UpdateStatus updates only the status of a ride.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	query := `UPDATE rides SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// AssignDriver marks the ride DRIVER_ASSIGNED and binds the driver. The
// unique index on assigned_driver_id turns a concurrent double-assignment
// into ErrConflict.
func (r *RideRepository) AssignDriver(ctx context.Context, id, driverID string, at time.Time) error {
	query := `
		UPDATE rides
		SET status = $1, assigned_driver_id = $2, assigned_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query, domain.RideStatusDriverAssigned, driverID, at, id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return requireRow(result)
}

// MarkCancelled records cancellation time and reason alongside the status.
func (r *RideRepository) MarkCancelled(ctx context.Context, id, reason string, at time.Time) error {
	query := `
		UPDATE rides
		SET status = $1, cancelled_at = $2, cancel_reason = $3, assigned_driver_id = NULL, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query, domain.RideStatusCancelled, at, nullString(reason), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *RideRepository) scanOne(row *sql.Row) (*domain.Ride, error) {
	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

func (r *RideRepository) scanMany(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var assignedDriverID, cancelReason sql.NullString
	var assignedAt, cancelledAt sql.NullTime

	if err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.DropLat,
		&ride.DropLng,
		&ride.Tier,
		&ride.PaymentMethod,
		&ride.Status,
		&ride.SurgeMultiplier,
		&assignedDriverID,
		&assignedAt,
		&cancelledAt,
		&cancelReason,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if assignedDriverID.Valid {
		ride.AssignedDriverID = assignedDriverID.String
	}
	if assignedAt.Valid {
		ride.AssignedAt = assignedAt.Time
	}
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		ride.CancelReason = cancelReason.String
	}
	return &ride, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure RideRepository implements repository.RideRepository.
var _ repository.RideRepository = (*RideRepository)(nil)
