package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// newTransition builds one audit row for a validated transition.
func newTransition(entity statemachine.Entity, entityID, from, to string) *domain.StateTransition {
	return &domain.StateTransition{
		ID:         uuid.New().String(),
		EntityType: string(entity),
		EntityID:   entityID,
		FromState:  from,
		ToState:    to,
		OccurredAt: time.Now(),
	}
}
