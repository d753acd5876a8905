// Package statemachine validates entity state transitions.
//
// It is pure and stateless: callers read the current state under a row lock
// and consult the tables here before writing. The store enforces the same
// tables with triggers as a defense-in-depth net.
package statemachine

import (
	"fmt"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

// Entity identifies which transition table applies.
type Entity string

const (
	EntityRide   Entity = "ride"
	EntityDriver Entity = "driver"
	EntityTrip   Entity = "trip"
)

// InvalidTransitionError reports a transition not present in the tables.
type InvalidTransitionError struct {
	Entity  Entity
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s (allowed: %v)", e.Entity, e.From, e.To, e.Allowed)
}

var transitions = map[Entity]map[string][]string{
	EntityRide: {
		string(domain.RideStatusRequested):      {string(domain.RideStatusMatching), string(domain.RideStatusCancelled), string(domain.RideStatusExpired)},
		string(domain.RideStatusMatching):       {string(domain.RideStatusDriverAssigned), string(domain.RideStatusCancelled), string(domain.RideStatusExpired)},
		string(domain.RideStatusDriverAssigned): {string(domain.RideStatusCompleted), string(domain.RideStatusCancelled)},
		string(domain.RideStatusCompleted):      {},
		string(domain.RideStatusCancelled):      {},
		string(domain.RideStatusExpired):        {},
	},
	EntityDriver: {
		string(domain.DriverStatusOffline):   {string(domain.DriverStatusAvailable)},
		string(domain.DriverStatusAvailable): {string(domain.DriverStatusOffline), string(domain.DriverStatusOnTrip)},
		string(domain.DriverStatusOnTrip):    {string(domain.DriverStatusAvailable), string(domain.DriverStatusOffline)},
	},
	EntityTrip: {
		string(domain.TripStatusCreated):   {string(domain.TripStatusStarted), string(domain.TripStatusCancelled)},
		string(domain.TripStatusStarted):   {string(domain.TripStatusPaused), string(domain.TripStatusEnded), string(domain.TripStatusCancelled)},
		string(domain.TripStatusPaused):    {string(domain.TripStatusStarted), string(domain.TripStatusEnded), string(domain.TripStatusCancelled)},
		string(domain.TripStatusEnded):     {},
		string(domain.TripStatusCancelled): {},
	},
}

// Validate returns nil when from -> to is a permitted transition for the
// entity, and an *InvalidTransitionError otherwise. Unknown states have no
// outgoing transitions.
func Validate(entity Entity, from, to string) error {
	allowed := transitions[entity][from]
	for _, a := range allowed {
		if a == to {
			return nil
		}
	}
	return &InvalidTransitionError{Entity: entity, From: from, To: to, Allowed: allowed}
}

// IsTerminal reports whether the state has no outgoing transitions.
func IsTerminal(entity Entity, state string) bool {
	table, ok := transitions[entity]
	if !ok {
		return false
	}
	allowed, known := table[state]
	return known && len(allowed) == 0
}
