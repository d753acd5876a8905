package statemachine

import (
	"errors"
	"testing"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
)

func TestValidate_AllowedTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		entity Entity
		from   string
		to     string
	}{
		{EntityRide, string(domain.RideStatusRequested), string(domain.RideStatusMatching)},
		{EntityRide, string(domain.RideStatusMatching), string(domain.RideStatusDriverAssigned)},
		{EntityRide, string(domain.RideStatusMatching), string(domain.RideStatusExpired)},
		{EntityRide, string(domain.RideStatusMatching), string(domain.RideStatusCancelled)},
		{EntityRide, string(domain.RideStatusDriverAssigned), string(domain.RideStatusCompleted)},
		{EntityRide, string(domain.RideStatusDriverAssigned), string(domain.RideStatusCancelled)},
		{EntityDriver, string(domain.DriverStatusOffline), string(domain.DriverStatusAvailable)},
		{EntityDriver, string(domain.DriverStatusAvailable), string(domain.DriverStatusOnTrip)},
		{EntityDriver, string(domain.DriverStatusAvailable), string(domain.DriverStatusOffline)},
		{EntityDriver, string(domain.DriverStatusOnTrip), string(domain.DriverStatusAvailable)},
		{EntityTrip, string(domain.TripStatusCreated), string(domain.TripStatusStarted)},
		{EntityTrip, string(domain.TripStatusStarted), string(domain.TripStatusPaused)},
		{EntityTrip, string(domain.TripStatusPaused), string(domain.TripStatusStarted)},
		{EntityTrip, string(domain.TripStatusStarted), string(domain.TripStatusEnded)},
		{EntityTrip, string(domain.TripStatusPaused), string(domain.TripStatusEnded)},
		{EntityTrip, string(domain.TripStatusCreated), string(domain.TripStatusCancelled)},
	}

	for _, tc := range cases {
		if err := Validate(tc.entity, tc.from, tc.to); err != nil {
			t.Errorf("%s %s -> %s should be allowed: %v", tc.entity, tc.from, tc.to, err)
		}
	}
}

func TestValidate_RejectedTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		entity Entity
		from   string
		to     string
	}{
		{EntityRide, string(domain.RideStatusCompleted), string(domain.RideStatusMatching)},
		{EntityRide, string(domain.RideStatusCancelled), string(domain.RideStatusDriverAssigned)},
		{EntityRide, string(domain.RideStatusExpired), string(domain.RideStatusMatching)},
		{EntityRide, string(domain.RideStatusMatching), string(domain.RideStatusCompleted)},
		{EntityRide, string(domain.RideStatusRequested), string(domain.RideStatusDriverAssigned)},
		{EntityDriver, string(domain.DriverStatusOffline), string(domain.DriverStatusOnTrip)},
		{EntityTrip, string(domain.TripStatusEnded), string(domain.TripStatusStarted)},
		{EntityTrip, string(domain.TripStatusCancelled), string(domain.TripStatusStarted)},
		{EntityTrip, string(domain.TripStatusCreated), string(domain.TripStatusEnded)},
		{EntityTrip, string(domain.TripStatusCreated), string(domain.TripStatusPaused)},
	}

	for _, tc := range cases {
		err := Validate(tc.entity, tc.from, tc.to)
		if err == nil {
			t.Errorf("%s %s -> %s should be rejected", tc.entity, tc.from, tc.to)
			continue
		}
		var ite *InvalidTransitionError
		if !errors.As(err, &ite) {
			t.Errorf("expected InvalidTransitionError, got %T", err)
			continue
		}
		if ite.From != tc.from || ite.To != tc.to {
			t.Errorf("error carries %s -> %s, want %s -> %s", ite.From, ite.To, tc.from, tc.to)
		}
	}
}

func TestValidate_UnknownStateHasNoTransitions(t *testing.T) {
	t.Parallel()

	if err := Validate(EntityRide, "LIMBO", string(domain.RideStatusMatching)); err == nil {
		t.Error("unknown source state should have no outgoing transitions")
	}
	if err := Validate(Entity("rocket"), "CREATED", "STARTED"); err == nil {
		t.Error("unknown entity should have no transitions")
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []struct {
		entity Entity
		state  string
	}{
		{EntityRide, string(domain.RideStatusCompleted)},
		{EntityRide, string(domain.RideStatusCancelled)},
		{EntityRide, string(domain.RideStatusExpired)},
		{EntityTrip, string(domain.TripStatusEnded)},
		{EntityTrip, string(domain.TripStatusCancelled)},
	}
	for _, tc := range terminal {
		if !IsTerminal(tc.entity, tc.state) {
			t.Errorf("%s %s should be terminal", tc.entity, tc.state)
		}
	}

	nonTerminal := []struct {
		entity Entity
		state  string
	}{
		{EntityRide, string(domain.RideStatusMatching)},
		{EntityTrip, string(domain.TripStatusPaused)},
		{EntityDriver, string(domain.DriverStatusOffline)},
	}
	for _, tc := range nonTerminal {
		if IsTerminal(tc.entity, tc.state) {
			t.Errorf("%s %s should not be terminal", tc.entity, tc.state)
		}
	}

	// Unknown states are not terminal; they are simply unknown.
	if IsTerminal(EntityRide, "LIMBO") {
		t.Error("unknown state should not report terminal")
	}
}
