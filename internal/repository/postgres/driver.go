package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, name, phone, status, rating, lat, lng, located_at, created_at, updated_at`

// Create persists a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, status, rating, lat, lng, located_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var locatedAt sql.NullTime
	if !driver.LocatedAt.IsZero() {
		locatedAt = sql.NullTime{Time: driver.LocatedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Status,
		driver.Rating,
		driver.Lat,
		driver.Lng,
		locatedAt,
		driver.CreatedAt,
		driver.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a driver by ID holding a row lock.
func (r *DriverRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// List retrieves drivers, optionally filtered by status.
func (r *DriverRepository) List(ctx context.Context, status domain.DriverStatus, limit int) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers`
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

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateLocation persists the last-known coordinate of a driver.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	query := `UPDATE drivers SET lat = $1, lng = $2, located_at = $3, updated_at = NOW() WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query, lat, lng, at, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	driver, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var locatedAt sql.NullTime

	if err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Status,
		&driver.Rating,
		&driver.Lat,
		&driver.Lng,
		&locatedAt,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if locatedAt.Valid {
		driver.LocatedAt = locatedAt.Time
	}
	return &driver, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
