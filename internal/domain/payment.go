package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// Payment represents a payment for a trip.
//
// A payment reaches COMPLETED or FAILED only through a PSP webhook or after
// exhausting its retry budget.
type Payment struct {
	ID               string
	TripID           string
	Amount           float64
	Status           PaymentStatus
	PSPTransactionID string
	PSPResponse      string
	RetryCount       int
	MaxRetries       int
	LastRetryAt      time.Time
	NextRetryAt      time.Time // zero means eligible immediately
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
