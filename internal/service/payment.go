package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// Payment retry defaults.
const DefaultPaymentMaxRetries = 3

// DefaultPaymentBackoff is the retry schedule indexed by attempts already
// made; the last entry repeats.
var DefaultPaymentBackoff = []time.Duration{30 * time.Second, 120 * time.Second, 480 * time.Second}

// PaymentService owns the payment pipeline: creation with its outbox event,
// PSP submission with backoff, and webhook finalization.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	tx            repository.TxRunner
	psp           PSP
	bus           *eventbus.Bus
	notification  *NotificationService
	webhookSecret string
	maxRetries    int
	backoff       []time.Duration
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	tx repository.TxRunner,
	psp PSP,
	bus *eventbus.Bus,
	notification *NotificationService,
	webhookSecret string,
	maxRetries int,
	backoff []time.Duration,
) *PaymentService {
	if maxRetries <= 0 {
		maxRetries = DefaultPaymentMaxRetries
	}
	if len(backoff) == 0 {
		backoff = DefaultPaymentBackoff
	}
	return &PaymentService{
		paymentRepo:   paymentRepo,
		tx:            tx,
		psp:           psp,
		bus:           bus,
		notification:  notification,
		webhookSecret: webhookSecret,
		maxRetries:    maxRetries,
		backoff:       backoff,
	}
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// GetPaymentByTrip retrieves the payment for a trip, or nil when none exists.
func (s *PaymentService) GetPaymentByTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.paymentRepo.GetByTripID(ctx, tripID)
}

// CreatePayment creates the PENDING payment for an ended trip together with
// its outbox event in one transaction. Idempotent by trip: an existing
// payment is returned unchanged.
func (s *PaymentService) CreatePayment(ctx context.Context, tripID string) (*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var payment *domain.Payment
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Status != domain.TripStatusEnded {
			return ErrTripNotEnded
		}

		existing, err := r.Payments.GetByTripID(ctx, tripID)
		if err != nil {
			return err
		}
		if existing != nil {
			payment = existing
			return nil
		}

		now := time.Now()
		payment = &domain.Payment{
			ID:         uuid.New().String(),
			TripID:     tripID,
			Amount:     trip.TotalFare,
			Status:     domain.PaymentStatusPending,
			MaxRetries: s.maxRetries,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Payments.Create(ctx, payment); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"payment_id": payment.ID,
			"trip_id":    tripID,
			"amount":     payment.Amount,
		})
		if err != nil {
			return err
		}
		return r.Outbox.Create(ctx, &domain.OutboxEvent{
			ID:            uuid.New().String(),
			AggregateType: domain.AggregatePayment,
			AggregateID:   payment.ID,
			EventType:     domain.OutboxPaymentCreated,
			Payload:       payload,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ProcessPayment handles one due outbox event: submit the charge, or
// schedule a retry, or give up once the retry budget is spent. The event
// stays unprocessed through PROCESSING so a lost webhook can be reconciled.
func (s *PaymentService) ProcessPayment(ctx context.Context, event *domain.OutboxEvent) error {
	var failed *domain.Payment
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		payment, err := r.Payments.GetByIDForUpdate(ctx, event.AggregateID)
		if err != nil {
			return err
		}

		if payment.Status != domain.PaymentStatusPending {
			return r.Outbox.MarkProcessed(ctx, event.ID)
		}

		now := time.Now()

		if payment.RetryCount >= payment.MaxRetries {
			payment.Status = domain.PaymentStatusFailed
			payment.FailureReason = "max retries exceeded"
			payment.UpdatedAt = now
			if err := r.Payments.Update(ctx, payment); err != nil {
				return err
			}
			if err := r.Outbox.MarkProcessed(ctx, event.ID); err != nil {
				return err
			}
			failed = payment
			return nil
		}

		result, chargeErr := s.psp.Charge(ctx, payment.ID, payment.Amount)
		if chargeErr != nil {
			payment.RetryCount++
			payment.LastRetryAt = now
			payment.NextRetryAt = now.Add(s.backoffFor(payment.RetryCount))
			payment.FailureReason = chargeErr.Error()
			payment.UpdatedAt = now
			return r.Payments.Update(ctx, payment)
		}

		payment.Status = domain.PaymentStatusProcessing
		payment.PSPTransactionID = result.TransactionID
		payment.PSPResponse = result.RawResponse
		payment.UpdatedAt = now
		return r.Payments.Update(ctx, payment)
	})
	if err != nil {
		return err
	}

	if failed != nil {
		s.bus.Publish(eventbus.Event{Type: eventbus.EventPaymentFailed, Payload: failed})
		_ = s.notification.NotifyPaymentFailed(ctx, failed)
	}
	return nil
}

// backoffFor returns the delay before the next attempt after retryCount
// failed attempts.
func (s *PaymentService) backoffFor(retryCount int) time.Duration {
	idx := retryCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.backoff) {
		idx = len(s.backoff) - 1
	}
	return s.backoff[idx]
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 signature over the raw
// webhook body.
func (s *PaymentService) VerifyWebhookSignature(body []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrUnauthorizedWebhook
	}
	return nil
}

// WebhookRequest is the provider's asynchronous verdict for a payment.
type WebhookRequest struct {
	PaymentID     string
	TransactionID string
	Status        string // COMPLETED or FAILED
	Reason        string
}

// HandleWebhook finalizes a payment from the provider verdict. Replays of an
// already-final payment return it unchanged.
func (s *PaymentService) HandleWebhook(ctx context.Context, req WebhookRequest) (*domain.Payment, error) {
	if req.PaymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	var status domain.PaymentStatus
	switch req.Status {
	case string(domain.PaymentStatusCompleted):
		status = domain.PaymentStatusCompleted
	case string(domain.PaymentStatusFailed):
		status = domain.PaymentStatusFailed
	default:
		return nil, ErrUnauthorizedWebhook
	}

	var (
		final     *domain.Payment
		finalized bool
	)
	err := s.tx.InTx(ctx, func(r *repository.Repos) error {
		payment, err := r.Payments.GetByIDForUpdate(ctx, req.PaymentID)
		if err != nil {
			return err
		}

		if payment.Status == domain.PaymentStatusCompleted || payment.Status == domain.PaymentStatusFailed {
			final = payment
			return nil
		}

		payment.Status = status
		if req.TransactionID != "" {
			payment.PSPTransactionID = req.TransactionID
		}
		if status == domain.PaymentStatusFailed {
			payment.FailureReason = req.Reason
		}
		payment.UpdatedAt = time.Now()
		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		if err := r.Outbox.MarkProcessedByAggregate(ctx, domain.AggregatePayment, payment.ID); err != nil {
			return err
		}

		final = payment
		finalized = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finalized {
		if final.Status == domain.PaymentStatusCompleted {
			s.bus.Publish(eventbus.Event{Type: eventbus.EventPaymentCompleted, Payload: final})
			_ = s.notification.NotifyPaymentSuccess(ctx, final)
		} else {
			s.bus.Publish(eventbus.Event{Type: eventbus.EventPaymentFailed, Payload: final})
			_ = s.notification.NotifyPaymentFailed(ctx, final)
		}
	}
	return final, nil
}
