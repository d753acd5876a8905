package worker

import (
	"context"
	"log"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

// Outbox defaults.
const (
	DefaultOutboxInterval  = 5 * time.Second
	DefaultOutboxBatchSize = 10
)

// OutboxProcessor drains due payment outbox events into the PSP pipeline.
type OutboxProcessor struct {
	outboxRepo repository.OutboxRepository
	payments   *service.PaymentService
	interval   time.Duration
	batchSize  int
}

// NewOutboxProcessor creates a new OutboxProcessor.
func NewOutboxProcessor(
	outboxRepo repository.OutboxRepository,
	payments *service.PaymentService,
	interval time.Duration,
	batchSize int,
) *OutboxProcessor {
	if interval <= 0 {
		interval = DefaultOutboxInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultOutboxBatchSize
	}
	return &OutboxProcessor{
		outboxRepo: outboxRepo,
		payments:   payments,
		interval:   interval,
		batchSize:  batchSize,
	}
}

// Run polls until the context is cancelled.
func (p *OutboxProcessor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil {
				log.Printf("[OUTBOX] tick failed: %v", err)
			}
		}
	}
}

// Tick processes one batch of due events. A failure on one event never stops
// the rest of the batch.
func (p *OutboxProcessor) Tick(ctx context.Context) error {
	events, err := p.outboxRepo.ListDuePayments(ctx, time.Now(), p.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.payments.ProcessPayment(ctx, event); err != nil {
			log.Printf("[OUTBOX] process failed for event %s (payment %s): %v", event.ID, event.AggregateID, err)
		}
	}
	return nil
}
