package repository

import "context"

// Repos bundles transaction-scoped repositories handed to a TxRunner
// callback. All writes through one Repos commit or roll back together.
type Repos struct {
	Drivers  DriverRepository
	Rides    RideRepository
	Trips    TripRepository
	Payments PaymentRepository
	Outbox   OutboxRepository
	Audit    AuditRepository
}

// TxRunner runs a callback inside a single database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(r *Repos) error) error
}
