package domain

import (
	"encoding/json"
	"time"
)

// Outbox aggregate types.
const (
	AggregatePayment = "PAYMENT"
)

// Outbox event types.
const (
	OutboxPaymentCreated = "PAYMENT_CREATED"
)

// OutboxEvent is a transactional side-table row written in the same
// transaction as the domain row it announces.
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       json.RawMessage
	Processed     bool
	CreatedAt     time.Time
}

// StateTransition is one audit row recording a validated entity transition.
type StateTransition struct {
	ID         string
	EntityType string
	EntityID   string
	FromState  string
	ToState    string
	OccurredAt time.Time
}
