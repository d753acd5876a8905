package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/statemachine"
)

// ──────────────────────────────────────────────
// DRIVER REGISTRATION
// ──────────────────────────────────────────────

func TestCreateDriver_WithInitialPosition(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	driver, err := env.driverSvc.CreateDriver(context.Background(), service.CreateDriverRequest{
		Name:  "Ada",
		Phone: "+15550001",
		Lat:   37.7749,
		Lng:   -122.4194,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Status != domain.DriverStatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", driver.Status)
	}
	if driver.Rating != 5.0 {
		t.Errorf("expected rating 5.0, got %f", driver.Rating)
	}
	if !driver.HasLocation() {
		t.Error("expected located_at set")
	}
	if !env.geo.HasMember(driver.ID) {
		t.Error("driver with a position must enter the matching index")
	}
}

func TestCreateDriver_WithoutPositionStaysOutOfIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	driver, err := env.driverSvc.CreateDriver(context.Background(), service.CreateDriverRequest{
		Name:  "Ada",
		Phone: "+15550001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.HasLocation() {
		t.Error("expected no location")
	}
	if env.geo.HasMember(driver.ID) {
		t.Error("driver without a position must stay out of the matching index")
	}
}

func TestCreateDriver_DuplicatePhone(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	req := service.CreateDriverRequest{Name: "Ada", Phone: "+15550001"}

	if _, err := env.driverSvc.CreateDriver(context.Background(), req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := env.driverSvc.CreateDriver(context.Background(), req); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateDriver_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	if _, err := env.driverSvc.CreateDriver(context.Background(), service.CreateDriverRequest{Phone: "+1"}); !errors.Is(err, service.ErrInvalidDriverName) {
		t.Errorf("expected ErrInvalidDriverName, got %v", err)
	}
	if _, err := env.driverSvc.CreateDriver(context.Background(), service.CreateDriverRequest{Name: "Ada"}); !errors.Is(err, service.ErrInvalidDriverPhone) {
		t.Errorf("expected ErrInvalidDriverPhone, got %v", err)
	}
	if _, err := env.driverSvc.CreateDriver(context.Background(), service.CreateDriverRequest{Name: "Ada", Phone: "+1", Lat: 95, Lng: 10}); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

// ──────────────────────────────────────────────
// LOCATION UPDATES
// ──────────────────────────────────────────────

func TestUpdateLocation_AvailableDriverEntersIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.drivers.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	if err := env.driverSvc.UpdateLocation(context.Background(), "driver-1", 37.7749, -122.4194); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !env.geo.HasMember("driver-1") {
		t.Error("available driver must enter the matching index")
	}
	if env.writer.PendingCount() != 1 {
		t.Errorf("expected 1 pending store write, got %d", env.writer.PendingCount())
	}
	// The store write is asynchronous; nothing lands until a flush.
	if env.drivers.UpdateLocationCallCount != 0 {
		t.Error("store write must be deferred to the writer")
	}
}

func TestUpdateLocation_OnTripDriverStaysOutOfIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.drivers.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOnTrip})

	if err := env.driverSvc.UpdateLocation(context.Background(), "driver-1", 37.7749, -122.4194); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.geo.HasMember("driver-1") {
		t.Error("on-trip driver must stay out of the matching index")
	}
	// Tracking still wants the position in the store.
	if env.writer.PendingCount() != 1 {
		t.Errorf("expected 1 pending store write, got %d", env.writer.PendingCount())
	}
}

func TestUpdateLocation_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.drivers.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	if err := env.driverSvc.UpdateLocation(context.Background(), "driver-1", 91, 0); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
	if err := env.driverSvc.UpdateLocation(context.Background(), "driver-1", 0, 181); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestUpdateLocation_WarmCacheSkipsStoreRead(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.drivers.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	// Warm the cache with one read.
	if _, err := env.driverSvc.GetDriver(context.Background(), "driver-1"); err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	reads := env.drivers.GetByIDCallCount

	for i := 0; i < 5; i++ {
		if err := env.driverSvc.UpdateLocation(context.Background(), "driver-1", 37.7749, -122.4194); err != nil {
			t.Fatalf("report %d failed: %v", i+1, err)
		}
	}

	if env.drivers.GetByIDCallCount != reads {
		t.Errorf("position reports hit the store %d times; the status gate must read the cache", env.drivers.GetByIDCallCount-reads)
	}
	if !env.geo.HasMember("driver-1") {
		t.Error("available driver must enter the matching index")
	}
}

func TestLocationWriter_CoalescesToLastWrite(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.drivers.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable})

	now := time.Now()
	env.writer.Enqueue("driver-1", 1, 1, now)
	env.writer.Enqueue("driver-1", 2, 2, now.Add(time.Second))
	env.writer.Enqueue("driver-1", 3, 3, now.Add(2*time.Second))

	if env.writer.PendingCount() != 1 {
		t.Fatalf("expected updates coalesced to 1, got %d", env.writer.PendingCount())
	}

	env.writer.Flush(context.Background())

	if env.drivers.UpdateLocationCallCount != 1 {
		t.Errorf("expected 1 store write, got %d", env.drivers.UpdateLocationCallCount)
	}
	driver := env.drivers.GetDriver("driver-1")
	if driver.Lat != 3 || driver.Lng != 3 {
		t.Errorf("expected last write to win, got (%f, %f)", driver.Lat, driver.Lng)
	}
	if env.writer.PendingCount() != 0 {
		t.Error("flush must drain the queue")
	}
}

// ──────────────────────────────────────────────
// DRIVER PRESENCE
// ──────────────────────────────────────────────

func TestUpdateStatus_OfflineLeavesIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	updated, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOffline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.DriverStatusOffline {
		t.Errorf("expected OFFLINE, got %s", updated.Status)
	}
	if env.geo.HasMember("driver-1") {
		t.Error("offline driver must leave the matching index")
	}
}

func TestUpdateStatus_BackToAvailableReentersIndex(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	if _, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOffline); err != nil {
		t.Fatalf("offline failed: %v", err)
	}
	if _, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusAvailable); err != nil {
		t.Fatalf("available failed: %v", err)
	}
	if !env.geo.HasMember("driver-1") {
		t.Error("available driver with a known position must re-enter the index")
	}
}

func TestUpdateStatus_IndexRemovalPrecedesCommit(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	// Once OFFLINE commits the driver must already be out of the index;
	// a removal undone by rollback only costs a missed match.
	inIndexAtCommit := true
	env.tx.CommitHook = func() {
		inIndexAtCommit = env.geo.HasMember("driver-1")
	}

	if _, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOffline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inIndexAtCommit {
		t.Error("driver still in the matching index at commit time")
	}
}

func TestUpdateStatus_IndexRemovalFailureAbortsChange(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)
	env.geo.RemoveError = errors.New("redis down")

	if _, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOffline); err == nil {
		t.Fatal("status change must fail when the index removal fails")
	}
	if !env.geo.HasMember("driver-1") {
		t.Error("failed removal must leave the index entry in place")
	}
}

func TestUpdateStatus_OnTripNotRequestable(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	_, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOnTrip)
	var invalid *statemachine.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if env.drivers.GetDriver("driver-1").Status != domain.DriverStatusAvailable {
		t.Error("driver status must be unchanged")
	}
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	if _, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusAvailable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.drivers.UpdateStatusCallCount != 0 {
		t.Error("no-op status change must not write")
	}
	if len(env.audit.Transitions()) != 0 {
		t.Error("no-op status change must not audit")
	}
}

// ──────────────────────────────────────────────
// DRIVER CACHE
// ──────────────────────────────────────────────

func TestGetDriver_ReadsThroughCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	first, err := env.driverSvc.GetDriver(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A store-side change is invisible until the cache is invalidated.
	env.drivers.GetDriver("driver-1").Name = "Renamed"

	second, err := env.driverSvc.GetDriver(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Name != first.Name {
		t.Errorf("expected cached name %q, got %q", first.Name, second.Name)
	}

	if err := env.cache.InvalidateDriver(context.Background(), "driver-1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	third, err := env.driverSvc.GetDriver(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.Name != "Renamed" {
		t.Errorf("expected fresh name after invalidation, got %q", third.Name)
	}
}

func TestUpdateStatus_InvalidatesCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.seedAvailableDriver("driver-1", 37.7749, -122.4194)

	if _, err := env.driverSvc.GetDriver(context.Background(), "driver-1"); err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	if _, err := env.driverSvc.UpdateStatus(context.Background(), "driver-1", domain.DriverStatusOffline); err != nil {
		t.Fatalf("status change failed: %v", err)
	}

	driver, err := env.driverSvc.GetDriver(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("expected OFFLINE after invalidation, got %s", driver.Status)
	}
}
