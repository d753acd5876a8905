package postgres

import (
	"context"
	"database/sql"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// TxRunner is a PostgreSQL implementation of repository.TxRunner. Each InTx
// call opens one transaction and hands the callback repositories bound to it.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx runs fn inside a transaction with transaction-scoped repositories.
func (t *TxRunner) InTx(ctx context.Context, fn func(r *repository.Repos) error) error {
	return RunInTx(ctx, t.db, func(tx *sql.Tx) error {
		return fn(&repository.Repos{
			Drivers:  NewDriverRepositoryWithTx(tx),
			Rides:    NewRideRepositoryWithTx(tx),
			Trips:    NewTripRepositoryWithTx(tx),
			Payments: NewPaymentRepositoryWithTx(tx),
			Outbox:   NewOutboxRepositoryWithTx(tx),
			Audit:    NewAuditRepositoryWithTx(tx),
		})
	})
}

// Ensure TxRunner implements repository.TxRunner.
var _ repository.TxRunner = (*TxRunner)(nil)
