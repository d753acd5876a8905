package tests

import (
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/eventbus"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/service"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/worker"
)

const testWebhookSecret = "test-secret"

// testEnv wires the full service graph over the mocks so a test can drive
// any slice of the lifecycle.
type testEnv struct {
	drivers  *MockDriverRepository
	rides    *MockRideRepository
	trips    *MockTripRepository
	payments *MockPaymentRepository
	outbox   *MockOutboxRepository
	audit    *MockAuditRepository
	tx       *MockTxRunner
	geo      *MockGeoStore
	cache    *MockCacheStore
	psp      *service.MockPSP
	bus      *eventbus.Bus

	writer     *service.LocationWriter
	rideSvc    *service.RideService
	driverSvc  *service.DriverService
	assignSvc  *service.AssignmentService
	paymentSvc *service.PaymentService
	tripSvc    *service.TripService
	dispatcher *worker.Dispatcher
	processor  *worker.OutboxProcessor
}

func newTestEnv() *testEnv {
	e := &testEnv{
		drivers:  NewMockDriverRepository(),
		rides:    NewMockRideRepository(),
		trips:    NewMockTripRepository(),
		payments: NewMockPaymentRepository(),
		audit:    NewMockAuditRepository(),
		geo:      NewMockGeoStore(),
		cache:    NewMockCacheStore(),
		psp:      service.NewMockPSP(),
		bus:      eventbus.New(),
	}
	e.outbox = NewMockOutboxRepository(e.payments)
	e.tx = NewMockTxRunner(e.drivers, e.rides, e.trips, e.payments, e.outbox, e.audit)

	notification := service.NewNotificationService()
	matching := service.NewMatchingService(e.geo, 5.0, 5)

	e.writer = service.NewLocationWriter(e.drivers, time.Second)
	e.rideSvc = service.NewRideService(e.rides, e.trips, e.tx, matching, e.bus, notification)
	e.driverSvc = service.NewDriverService(e.drivers, e.tx, e.geo, e.cache, e.writer, e.bus)
	e.assignSvc = service.NewAssignmentService(e.tx, e.geo, e.cache, e.bus, notification)
	e.paymentSvc = service.NewPaymentService(
		e.payments, e.tx, e.psp, e.bus, notification,
		testWebhookSecret, 3, nil,
	)
	e.tripSvc = service.NewTripService(
		e.trips, e.rides, e.drivers, e.payments, e.tx,
		e.geo, e.cache, e.bus, notification, e.paymentSvc,
	)
	e.dispatcher = worker.NewDispatcher(e.rides, matching, e.assignSvc, e.rideSvc, worker.DispatchConfig{})
	e.processor = worker.NewOutboxProcessor(e.outbox, e.paymentSvc, time.Second, 10)
	return e
}

// seedAvailableDriver stores an AVAILABLE driver with a position and places
// it in the geo index.
func (e *testEnv) seedAvailableDriver(id string, lat, lng float64) *domain.Driver {
	driver := &domain.Driver{
		ID:        id,
		Name:      "Driver " + id,
		Phone:     "+1-" + id,
		Status:    domain.DriverStatusAvailable,
		Rating:    5.0,
		Lat:       lat,
		Lng:       lng,
		LocatedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	e.drivers.AddDriver(driver)
	e.geo.members[id] = true
	return driver
}

// seedMatchingRide stores a MATCHING ride created at the given time.
func (e *testEnv) seedMatchingRide(id string, createdAt time.Time) *domain.Ride {
	ride := &domain.Ride{
		ID:              id,
		RiderID:         "rider-" + id,
		PickupLat:       37.7749,
		PickupLng:       -122.4194,
		DropLat:         37.8049,
		DropLng:         -122.4094,
		Tier:            domain.RideTierEconomy,
		PaymentMethod:   domain.PaymentMethodCard,
		Status:          domain.RideStatusMatching,
		SurgeMultiplier: 1.0,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	e.rides.AddRide(ride)
	return ride
}
