package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
)

// ──────────────────────────────────────────────
// DRIVER ASSIGNMENT
// ──────────────────────────────────────────────

func TestAssign_HappyPath(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())

	assigned, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assigned.Status != domain.RideStatusDriverAssigned {
		t.Errorf("expected DRIVER_ASSIGNED, got %s", assigned.Status)
	}
	if assigned.AssignedDriverID != "driver-1" {
		t.Errorf("expected driver-1 bound, got %q", assigned.AssignedDriverID)
	}
	if assigned.AssignedAt.IsZero() {
		t.Error("expected assigned_at set")
	}

	// Assignment alone does not move the driver; accept does.
	if env.drivers.GetDriver("driver-1").Status != domain.DriverStatusAvailable {
		t.Error("driver must stay AVAILABLE until accept")
	}

	if len(env.audit.Transitions()) != 1 {
		t.Errorf("expected 1 audit row, got %d", len(env.audit.Transitions()))
	}
}

func TestAssign_DriverNotAvailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	driver := env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	driver.Status = domain.DriverStatusOffline
	env.seedMatchingRide("ride-1", time.Now())

	_, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Fatalf("expected ErrDriverUnavailable, got %v", err)
	}
	if env.rides.GetRide("ride-1").Status != domain.RideStatusMatching {
		t.Error("ride must stay MATCHING")
	}
}

func TestAssign_RideAlreadyAssigned(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedAvailableDriver("driver-2", 37.7750, -122.4195)
	env.seedMatchingRide("ride-1", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("first assign failed: %v", err)
	}

	_, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-2")
	if !errors.Is(err, service.ErrConcurrentlyAssigned) {
		t.Fatalf("expected ErrConcurrentlyAssigned, got %v", err)
	}
	if env.rides.GetRide("ride-1").AssignedDriverID != "driver-1" {
		t.Error("first assignment must stand")
	}
}

func TestAssign_DriverHoldsLiveAssignment(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())
	env.seedMatchingRide("ride-2", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("first assign failed: %v", err)
	}

	// The unique live-assignment constraint trips; the caller treats it as a
	// lost race and moves to the next candidate.
	_, err := env.assignSvc.Assign(context.Background(), "ride-2", "driver-1")
	if !errors.Is(err, service.ErrConcurrentlyAssigned) {
		t.Fatalf("expected ErrConcurrentlyAssigned, got %v", err)
	}
	if env.rides.GetRide("ride-2").Status != domain.RideStatusMatching {
		t.Error("ride-2 must stay MATCHING")
	}
}

func TestAssign_UnknownRideOrDriver(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedMatchingRide("ride-1", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ghost", "driver-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown ride, got %v", err)
	}
	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown driver, got %v", err)
	}
}

// ──────────────────────────────────────────────
// DRIVER ACCEPT
// ──────────────────────────────────────────────

func TestInitializeTrip_CreatesTripAndMovesDriverOnTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	trip, err := env.assignSvc.InitializeTrip(context.Background(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusCreated {
		t.Errorf("expected CREATED, got %s", trip.Status)
	}
	if trip.RideID != "ride-1" || trip.DriverID != "driver-1" {
		t.Errorf("trip bound to %s/%s, want ride-1/driver-1", trip.RideID, trip.DriverID)
	}
	if env.drivers.GetDriver("driver-1").Status != domain.DriverStatusOnTrip {
		t.Error("driver must be ON_TRIP after accept")
	}
	if env.geo.HasMember("driver-1") {
		t.Error("driver must leave the matching index on accept")
	}
}

func TestInitializeTrip_WrongDriverRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedAvailableDriver("driver-2", 37.7750, -122.4195)
	env.seedMatchingRide("ride-1", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	_, err := env.assignSvc.InitializeTrip(context.Background(), "ride-1", "driver-2")
	if !errors.Is(err, service.ErrDriverNotAssignedToRide) {
		t.Fatalf("expected ErrDriverNotAssignedToRide, got %v", err)
	}
	if env.trips.CountTrips() != 0 {
		t.Error("no trip may exist after a rejected accept")
	}
}

func TestInitializeTrip_SecondAcceptConflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := env.assignSvc.InitializeTrip(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	// The driver is ON_TRIP now, so the transition table rejects the replay
	// before the one-trip-per-ride constraint even comes into play.
	if _, err := env.assignSvc.InitializeTrip(context.Background(), "ride-1", "driver-1"); err == nil {
		t.Error("second accept must fail")
	}
	if env.trips.CountTrips() != 1 {
		t.Errorf("expected 1 trip, got %d", env.trips.CountTrips())
	}
}

func TestInitializeTrip_RequiresAssignedRide(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())

	_, err := env.assignSvc.InitializeTrip(context.Background(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrRideNotMatchable) {
		t.Fatalf("expected ErrRideNotMatchable, got %v", err)
	}
}

func TestInitializeTrip_IndexRemovalPrecedesCommit(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.seedMatchingRide("ride-1", time.Now())

	if _, err := env.assignSvc.Assign(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	// The instant ON_TRIP commits the driver must already be gone from the
	// index, or matching could still nominate a busy driver.
	inIndexAtCommit := true
	env.tx.CommitHook = func() {
		inIndexAtCommit = env.geo.HasMember("driver-1")
	}

	if _, err := env.assignSvc.InitializeTrip(context.Background(), "ride-1", "driver-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if inIndexAtCommit {
		t.Error("driver still in the matching index at commit time")
	}
}
