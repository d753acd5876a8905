package tests

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

// seedEndedTrip stores an ENDED trip ready for payment.
func seedEndedTrip(env *testEnv, tripID string, fare float64) *domain.Trip {
	trip := &domain.Trip{
		ID:          tripID,
		RideID:      "ride-" + tripID,
		DriverID:    "driver-1",
		Status:      domain.TripStatusEnded,
		StartedAt:   time.Now().Add(-20 * time.Minute),
		EndedAt:     time.Now(),
		DistanceKm:  10,
		DurationSec: 1200,
		BaseFare:    fare,
		TotalFare:   fare,
	}
	env.trips.AddTrip(trip)
	return trip
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ──────────────────────────────────────────────
// PAYMENT CREATION
// ──────────────────────────────────────────────

func TestCreatePayment_RequiresEndedTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.trips.AddTrip(&domain.Trip{ID: "trip-1", RideID: "ride-1", DriverID: "driver-1", Status: domain.TripStatusStarted})

	_, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if !errors.Is(err, service.ErrTripNotEnded) {
		t.Fatalf("expected ErrTripNotEnded, got %v", err)
	}
	if env.payments.CountPayments() != 0 {
		t.Error("no payment may exist for an unfinished trip")
	}
}

func TestCreatePayment_IdempotentByTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)

	first, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.ID != second.ID {
		t.Error("replayed create must return the existing payment")
	}
	if env.payments.CountPayments() != 1 {
		t.Errorf("expected 1 payment, got %d", env.payments.CountPayments())
	}
	if env.outbox.CountEvents() != 1 {
		t.Errorf("expected 1 outbox event, got %d", env.outbox.CountEvents())
	}

	if first.Status != domain.PaymentStatusPending {
		t.Errorf("expected PENDING, got %s", first.Status)
	}
	if first.Amount != 42.00 {
		t.Errorf("expected amount 42.00, got %f", first.Amount)
	}
	if first.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", first.MaxRetries)
	}

	events := env.outbox.GetEventsByAggregate(first.ID)
	if len(events) != 1 {
		t.Fatalf("expected 1 event for payment, got %d", len(events))
	}
	if events[0].EventType != domain.OutboxPaymentCreated {
		t.Errorf("expected event type %s, got %s", domain.OutboxPaymentCreated, events[0].EventType)
	}
	if events[0].Processed {
		t.Error("fresh event must be unprocessed")
	}
}

// ──────────────────────────────────────────────
// PSP SUBMISSION AND RETRY
// ──────────────────────────────────────────────

func TestProcessPayment_SuccessMovesToProcessing(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	event := env.outbox.GetEventsByAggregate(payment.ID)[0]

	if err := env.paymentSvc.ProcessPayment(context.Background(), event); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	stored := env.payments.GetPayment(payment.ID)
	if stored.Status != domain.PaymentStatusProcessing {
		t.Errorf("expected PROCESSING, got %s", stored.Status)
	}
	if stored.PSPTransactionID == "" {
		t.Error("expected a transaction id from the provider")
	}

	// The event stays open until the webhook verdict lands.
	if env.outbox.GetEventsByAggregate(payment.ID)[0].Processed {
		t.Error("event must stay unprocessed while PROCESSING")
	}
}

func TestProcessPayment_FailureSchedulesBackoff(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.psp.FailCharge = errors.New("psp unavailable")
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	event := env.outbox.GetEventsByAggregate(payment.ID)[0]

	schedule := []time.Duration{30 * time.Second, 120 * time.Second, 480 * time.Second}
	for attempt, wantDelay := range schedule {
		before := time.Now()
		if err := env.paymentSvc.ProcessPayment(context.Background(), event); err != nil {
			t.Fatalf("attempt %d: process failed: %v", attempt+1, err)
		}

		stored := env.payments.GetPayment(payment.ID)
		if stored.Status != domain.PaymentStatusPending {
			t.Fatalf("attempt %d: expected PENDING, got %s", attempt+1, stored.Status)
		}
		if stored.RetryCount != attempt+1 {
			t.Errorf("attempt %d: expected retry count %d, got %d", attempt+1, attempt+1, stored.RetryCount)
		}
		delay := stored.NextRetryAt.Sub(before)
		if delay < wantDelay-time.Second || delay > wantDelay+time.Second {
			t.Errorf("attempt %d: expected backoff near %v, got %v", attempt+1, wantDelay, delay)
		}
		if stored.FailureReason != "psp unavailable" {
			t.Errorf("attempt %d: unexpected failure reason %q", attempt+1, stored.FailureReason)
		}

		// Fast-forward past the backoff so the next attempt is eligible.
		stored.NextRetryAt = time.Now().Add(-time.Second)
		env.payments.AddPayment(stored)
	}

	// Retry budget spent: the next attempt gives up for good.
	if err := env.paymentSvc.ProcessPayment(context.Background(), event); err != nil {
		t.Fatalf("final attempt failed: %v", err)
	}
	stored := env.payments.GetPayment(payment.ID)
	if stored.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED after exhausted retries, got %s", stored.Status)
	}
	if stored.FailureReason != "max retries exceeded" {
		t.Errorf("unexpected failure reason %q", stored.FailureReason)
	}
	if !env.outbox.GetEventsByAggregate(payment.ID)[0].Processed {
		t.Error("event must close once the payment is FAILED")
	}
}

func TestProcessPayment_NonPendingClosesEvent(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stored := env.payments.GetPayment(payment.ID)
	stored.Status = domain.PaymentStatusCompleted
	event := env.outbox.GetEventsByAggregate(payment.ID)[0]

	if err := env.paymentSvc.ProcessPayment(context.Background(), event); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !env.outbox.GetEventsByAggregate(payment.ID)[0].Processed {
		t.Error("event for a finalized payment must be closed")
	}
}

func TestOutbox_ListDuePaymentsHonorsBackoff(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.psp.FailCharge = errors.New("psp unavailable")
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	event := env.outbox.GetEventsByAggregate(payment.ID)[0]
	if err := env.paymentSvc.ProcessPayment(context.Background(), event); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	// Backing off: not due now, due once next_retry_at passes.
	due, err := env.outbox.ListDuePayments(context.Background(), time.Now(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected no due events during backoff, got %d", len(due))
	}

	due, err = env.outbox.ListDuePayments(context.Background(), time.Now().Add(31*time.Second), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("expected 1 due event after backoff, got %d", len(due))
	}
}

func TestOutboxProcessor_TickDrivesPaymentToProcessing(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := env.processor.Tick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	if got := env.payments.GetPayment(payment.ID).Status; got != domain.PaymentStatusProcessing {
		t.Errorf("expected PROCESSING after tick, got %s", got)
	}
}

// ──────────────────────────────────────────────
// WEBHOOK FINALIZATION
// ──────────────────────────────────────────────

func TestWebhook_SignatureVerification(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	body := []byte(`{"payment_id":"p1","status":"COMPLETED"}`)

	if err := env.paymentSvc.VerifyWebhookSignature(body, signWebhook(body)); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	if err := env.paymentSvc.VerifyWebhookSignature(body, "deadbeef"); !errors.Is(err, service.ErrUnauthorizedWebhook) {
		t.Errorf("expected ErrUnauthorizedWebhook, got %v", err)
	}
	tampered := []byte(`{"payment_id":"p1","status":"FAILED"}`)
	if err := env.paymentSvc.VerifyWebhookSignature(tampered, signWebhook(body)); !errors.Is(err, service.ErrUnauthorizedWebhook) {
		t.Errorf("expected ErrUnauthorizedWebhook for tampered body, got %v", err)
	}
}

func TestWebhook_CompletesPayment(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	event := env.outbox.GetEventsByAggregate(payment.ID)[0]
	if err := env.paymentSvc.ProcessPayment(context.Background(), event); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	final, err := env.paymentSvc.HandleWebhook(context.Background(), service.WebhookRequest{
		PaymentID:     payment.ID,
		TransactionID: "txn-42",
		Status:        string(domain.PaymentStatusCompleted),
	})
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	if final.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", final.Status)
	}
	if final.PSPTransactionID != "txn-42" {
		t.Errorf("expected transaction id txn-42, got %q", final.PSPTransactionID)
	}
	if !env.outbox.GetEventsByAggregate(payment.ID)[0].Processed {
		t.Error("event must close on the webhook verdict")
	}
}

func TestWebhook_FailureRecordsReason(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	final, err := env.paymentSvc.HandleWebhook(context.Background(), service.WebhookRequest{
		PaymentID: payment.ID,
		Status:    string(domain.PaymentStatusFailed),
		Reason:    "card declined",
	})
	if err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if final.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED, got %s", final.Status)
	}
	if final.FailureReason != "card declined" {
		t.Errorf("unexpected failure reason %q", final.FailureReason)
	}
}

func TestWebhook_ReplayLeavesFinalStateUnchanged(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	seedEndedTrip(env, "trip-1", 42.00)
	payment, err := env.paymentSvc.CreatePayment(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := env.paymentSvc.HandleWebhook(context.Background(), service.WebhookRequest{
		PaymentID: payment.ID,
		Status:    string(domain.PaymentStatusCompleted),
	}); err != nil {
		t.Fatalf("first webhook failed: %v", err)
	}

	// A contradictory replay must not flip the verdict.
	replay, err := env.paymentSvc.HandleWebhook(context.Background(), service.WebhookRequest{
		PaymentID: payment.ID,
		Status:    string(domain.PaymentStatusFailed),
		Reason:    "late failure",
	})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.Status != domain.PaymentStatusCompleted {
		t.Errorf("replay flipped verdict to %s", replay.Status)
	}
	if got := env.payments.GetPayment(payment.ID).Status; got != domain.PaymentStatusCompleted {
		t.Errorf("stored status %s, want COMPLETED", got)
	}
}

func TestWebhook_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_, err := env.paymentSvc.HandleWebhook(context.Background(), service.WebhookRequest{
		PaymentID: "p1",
		Status:    "MAYBE",
	})
	if !errors.Is(err, service.ErrUnauthorizedWebhook) {
		t.Fatalf("expected ErrUnauthorizedWebhook, got %v", err)
	}
}
