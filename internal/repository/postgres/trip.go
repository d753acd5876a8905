package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, ride_id, driver_id, status, started_at, ended_at, distance_km, duration_sec, base_fare, total_fare, created_at, updated_at`

// Create persists a new trip. The unique index on ride_id and the partial
// unique index on active driver trips turn duplicates into ErrConflict.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, ride_id, driver_id, status, started_at, ended_at, distance_km, duration_sec, base_fare, total_fare, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RideID,
		trip.DriverID,
		trip.Status,
		nullTime(trip.StartedAt),
		nullTime(trip.EndedAt),
		trip.DistanceKm,
		trip.DurationSec,
		trip.BaseFare,
		trip.TotalFare,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a trip by ID holding a row lock.
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideID retrieves the trip created for a ride.
func (r *TripRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE ride_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, rideID))
}

// GetActiveByDriverID retrieves the driver's non-terminal trip, or nil when
// the driver has none.
func (r *TripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1 AND status IN ($2, $3, $4)
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, driverID,
		domain.TripStatusCreated, domain.TripStatusStarted, domain.TripStatusPaused))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return trip, nil
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET status = $1, started_at = $2, ended_at = $3, distance_km = $4, duration_sec = $5, base_fare = $6, total_fare = $7, updated_at = NOW()
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.Status,
		nullTime(trip.StartedAt),
		nullTime(trip.EndedAt),
		trip.DistanceKm,
		trip.DurationSec,
		trip.BaseFare,
		trip.TotalFare,
		trip.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *TripRepository) scanOne(row *sql.Row) (*domain.Trip, error) {
	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var startedAt, endedAt sql.NullTime

	if err := row.Scan(
		&trip.ID,
		&trip.RideID,
		&trip.DriverID,
		&trip.Status,
		&startedAt,
		&endedAt,
		&trip.DistanceKm,
		&trip.DurationSec,
		&trip.BaseFare,
		&trip.TotalFare,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		trip.EndedAt = endedAt.Time
	}
	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
