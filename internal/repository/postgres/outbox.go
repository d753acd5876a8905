package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// OutboxRepository is a PostgreSQL implementation of repository.OutboxRepository.
type OutboxRepository struct {
	q Querier
}

// NewOutboxRepository creates a new PostgreSQL outbox repository.
func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{q: db}
}

// NewOutboxRepositoryWithTx creates an outbox repository using a transaction.
func NewOutboxRepositoryWithTx(tx *sql.Tx) *OutboxRepository {
	return &OutboxRepository{q: tx}
}

// Create persists a new outbox event.
func (r *OutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		event.ID,
		event.AggregateType,
		event.AggregateID,
		event.EventType,
		[]byte(event.Payload),
		event.Processed,
		event.CreatedAt,
	)
	return err
}

// ListDuePayments retrieves unprocessed PAYMENT events whose payment row is
// not backing off, oldest first.
func (r *OutboxRepository) ListDuePayments(ctx context.Context, now time.Time, limit int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT o.id, o.aggregate_type, o.aggregate_id, o.event_type, o.payload, o.processed, o.created_at
		FROM outbox_events o
		JOIN payments p ON p.id = o.aggregate_id
		WHERE o.processed = false
		  AND o.aggregate_type = $1
		  AND (p.next_retry_at IS NULL OR p.next_retry_at <= $2)
		ORDER BY o.created_at ASC
		LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, domain.AggregatePayment, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		var payload []byte
		if err := rows.Scan(
			&event.ID,
			&event.AggregateType,
			&event.AggregateID,
			&event.EventType,
			&payload,
			&event.Processed,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		event.Payload = payload
		events = append(events, &event)
	}
	return events, rows.Err()
}

// MarkProcessed marks a single event processed.
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id string) error {
	query := `UPDATE outbox_events SET processed = true WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// MarkProcessedByAggregate marks all unprocessed events for an aggregate
// processed. A no-op when none remain.
func (r *OutboxRepository) MarkProcessedByAggregate(ctx context.Context, aggregateType, aggregateID string) error {
	query := `
		UPDATE outbox_events
		SET processed = true
		WHERE aggregate_type = $1 AND aggregate_id = $2 AND processed = false
	`

	_, err := r.q.ExecContext(ctx, query, aggregateType, aggregateID)
	return err
}

// CountUnprocessedByAggregate returns how many unprocessed events remain for
// an aggregate.
func (r *OutboxRepository) CountUnprocessedByAggregate(ctx context.Context, aggregateType, aggregateID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM outbox_events
		WHERE aggregate_type = $1 AND aggregate_id = $2 AND processed = false
	`

	var count int
	err := r.q.QueryRowContext(ctx, query, aggregateType, aggregateID).Scan(&count)
	return count, err
}

// Ensure OutboxRepository implements repository.OutboxRepository.
var _ repository.OutboxRepository = (*OutboxRepository)(nil)
