package postgres

import (
	"context"
	"database/sql"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// AuditRepository is a PostgreSQL implementation of repository.AuditRepository.
type AuditRepository struct {
	q Querier
}

// NewAuditRepository creates a new PostgreSQL audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{q: db}
}

// NewAuditRepositoryWithTx creates an audit repository using a transaction.
func NewAuditRepositoryWithTx(tx *sql.Tx) *AuditRepository {
	return &AuditRepository{q: tx}
}

// Record appends one transition row.
func (r *AuditRepository) Record(ctx context.Context, transition *domain.StateTransition) error {
	query := `
		INSERT INTO state_transitions (id, entity_type, entity_id, from_state, to_state, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		transition.ID,
		transition.EntityType,
		transition.EntityID,
		transition.FromState,
		transition.ToState,
		transition.OccurredAt,
	)
	return err
}

// Ensure AuditRepository implements repository.AuditRepository.
var _ repository.AuditRepository = (*AuditRepository)(nil)
