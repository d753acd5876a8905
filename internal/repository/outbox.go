package repository

import (
	"context"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// OutboxRepository defines the persistence operations for outbox events.
type OutboxRepository interface {
	// Create persists a new outbox event. Called inside the same transaction
	// as the domain write it announces.
	Create(ctx context.Context, event *domain.OutboxEvent) error

	// ListDuePayments retrieves unprocessed PAYMENT events, oldest first,
	// whose payment row is not backing off (next_retry_at null or <= now).
	ListDuePayments(ctx context.Context, now time.Time, limit int) ([]*domain.OutboxEvent, error)

	// MarkProcessed marks a single event processed.
	MarkProcessed(ctx context.Context, id string) error

	// MarkProcessedByAggregate marks all unprocessed events for an aggregate
	// processed.
	MarkProcessedByAggregate(ctx context.Context, aggregateType, aggregateID string) error

	// CountUnprocessedByAggregate returns how many unprocessed events remain
	// for an aggregate.
	CountUnprocessedByAggregate(ctx context.Context, aggregateType, aggregateID string) (int, error)
}

// AuditRepository records validated state transitions.
type AuditRepository interface {
	// Record appends one transition row.
	Record(ctx context.Context, transition *domain.StateTransition) error
}
