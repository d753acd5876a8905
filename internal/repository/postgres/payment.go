package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, trip_id, amount, status, psp_transaction_id, psp_response, retry_count, max_retries, last_retry_at, next_retry_at, failure_reason, created_at, updated_at`

// Create persists a new payment. The unique index on trip_id turns a
// duplicate into ErrConflict.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, trip_id, amount, status, psp_transaction_id, psp_response, retry_count, max_retries, last_retry_at, next_retry_at, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TripID,
		payment.Amount,
		payment.Status,
		nullString(payment.PSPTransactionID),
		nullString(payment.PSPResponse),
		payment.RetryCount,
		payment.MaxRetries,
		nullTime(payment.LastRetryAt),
		nullTime(payment.NextRetryAt),
		nullString(payment.FailureReason),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a payment by ID holding a row lock.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByTripID retrieves the payment for a trip, or nil when none exists.
func (r *PaymentRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE trip_id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, tripID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// Update updates an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, psp_transaction_id = $2, psp_response = $3, retry_count = $4, last_retry_at = $5, next_retry_at = $6, failure_reason = $7, updated_at = NOW()
		WHERE id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		payment.Status,
		nullString(payment.PSPTransactionID),
		nullString(payment.PSPResponse),
		payment.RetryCount,
		nullTime(payment.LastRetryAt),
		nullTime(payment.NextRetryAt),
		nullString(payment.FailureReason),
		payment.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *PaymentRepository) scanOne(row *sql.Row) (*domain.Payment, error) {
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var pspTxnID, pspResponse, failureReason sql.NullString
	var lastRetryAt, nextRetryAt sql.NullTime

	if err := row.Scan(
		&payment.ID,
		&payment.TripID,
		&payment.Amount,
		&payment.Status,
		&pspTxnID,
		&pspResponse,
		&payment.RetryCount,
		&payment.MaxRetries,
		&lastRetryAt,
		&nextRetryAt,
		&failureReason,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if pspTxnID.Valid {
		payment.PSPTransactionID = pspTxnID.String
	}
	if pspResponse.Valid {
		payment.PSPResponse = pspResponse.String
	}
	if failureReason.Valid {
		payment.FailureReason = failureReason.String
	}
	if lastRetryAt.Valid {
		payment.LastRetryAt = lastRetryAt.Time
	}
	if nextRetryAt.Valid {
		payment.NextRetryAt = nextRetryAt.Time
	}
	return &payment, nil
}

// Ensure PaymentRepository implements repository.PaymentRepository.
var _ repository.PaymentRepository = (*PaymentRepository)(nil)
