package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/domain"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
	"github.com/pijushrbiswas/Ride-Hailing-Application/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount         int32
	GetByIDCallCount        int32
	UpdateStatusCallCount   int32
	UpdateLocationCallCount int32

	// Error injection
	CreateError         error
	UpdateStatusError   error
	UpdateLocationError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.Driver)}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if d.Phone == driver.Phone {
			return repository.ErrConflict
		}
	}
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	cp := *driver
	return &cp, nil
}

func (m *MockDriverRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	return m.GetByID(ctx, id)
}

func (m *MockDriverRepository) List(ctx context.Context, status domain.DriverStatus, limit int) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if status != "" && d.Status != status {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64, at time.Time) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Lat = lat
	driver.Lng = lng
	driver.LocatedAt = at
	return nil
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	AssignDriverCallCount int32

	// Error injection
	CreateError       error
	AssignDriverError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.Ride)}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ride
	return &cp, nil
}

func (m *MockRideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRideRepository) List(ctx context.Context, status domain.RideStatus, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		if status != "" && r.Status != status {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRideRepository) ListMatching(ctx context.Context, createdAfter time.Time, limit int) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.Status == domain.RideStatusMatching && r.CreatedAt.After(createdAfter) {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockRideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = status
	return nil
}

func (m *MockRideRepository) AssignDriver(ctx context.Context, id, driverID string, at time.Time) error {
	atomic.AddInt32(&m.AssignDriverCallCount, 1)
	if m.AssignDriverError != nil {
		return m.AssignDriverError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	// Mirror the partial unique index on live assignments.
	for _, r := range m.rides {
		if r.ID != id && r.AssignedDriverID == driverID && r.Status == domain.RideStatusDriverAssigned {
			return repository.ErrConflict
		}
	}
	ride.Status = domain.RideStatusDriverAssigned
	ride.AssignedDriverID = driverID
	ride.AssignedAt = at
	return nil
}

func (m *MockRideRepository) MarkCancelled(ctx context.Context, id, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Status = domain.RideStatusCancelled
	ride.CancelledAt = at
	ride.CancelReason = reason
	ride.AssignedDriverID = ""
	return nil
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func isActiveTrip(status domain.TripStatus) bool {
	return status == domain.TripStatusCreated || status == domain.TripStatusStarted || status == domain.TripStatusPaused
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.RideID == trip.RideID {
			return repository.ErrConflict
		}
		if t.DriverID == trip.DriverID && isActiveTrip(t.Status) {
			return repository.ErrConflict
		}
	}
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *trip
	return &cp, nil
}

func (m *MockTripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTripRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.RideID == rideID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.DriverID == driverID && isActiveTrip(t.Status) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *trip
	m.trips[trip.ID] = &cp
	return nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TripID == payment.TripID {
			return repository.ErrConflict
		}
	}
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *payment
	return &cp, nil
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Payment, error) {
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TripID == tripID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// GetPaymentByTripID returns the stored payment for a trip.
func (m *MockPaymentRepository) GetPaymentByTripID(tripID string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TripID == tripID {
			return p
		}
	}
	return nil
}

// CountPayments returns the number of payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK OUTBOX REPOSITORY
// ──────────────────────────────────────────────

// MockOutboxRepository is a mock implementation of OutboxRepository. It
// consults the payment mock to honor retry backoff in ListDuePayments.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.OutboxEvent

	payments *MockPaymentRepository

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockOutboxRepository creates a new mock outbox repository.
func NewMockOutboxRepository(payments *MockPaymentRepository) *MockOutboxRepository {
	return &MockOutboxRepository{
		events:   make(map[string]*domain.OutboxEvent),
		payments: payments,
	}
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	return nil
}

func (m *MockOutboxRepository) ListDuePayments(ctx context.Context, now time.Time, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.OutboxEvent
	for _, e := range m.events {
		if e.Processed || e.AggregateType != domain.AggregatePayment {
			continue
		}
		if m.payments != nil {
			payment := m.payments.GetPayment(e.AggregateID)
			if payment != nil && !payment.NextRetryAt.IsZero() && payment.NextRetryAt.After(now) {
				continue
			}
		}
		cp := *e
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	event.Processed = true
	return nil
}

func (m *MockOutboxRepository) MarkProcessedByAggregate(ctx context.Context, aggregateType, aggregateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			e.Processed = true
		}
	}
	return nil
}

func (m *MockOutboxRepository) CountUnprocessedByAggregate(ctx context.Context, aggregateType, aggregateID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID && !e.Processed {
			count++
		}
	}
	return count, nil
}

// GetEventsByAggregate returns events for test assertions.
func (m *MockOutboxRepository) GetEventsByAggregate(aggregateID string) []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateID == aggregateID {
			result = append(result, e)
		}
	}
	return result
}

// CountEvents returns the number of outbox events.
func (m *MockOutboxRepository) CountEvents() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// ──────────────────────────────────────────────
// MOCK AUDIT REPOSITORY
// ──────────────────────────────────────────────

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu          sync.RWMutex
	transitions []*domain.StateTransition

	// Error injection
	RecordError error
}

// NewMockAuditRepository creates a new mock audit repository.
func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Record(ctx context.Context, transition *domain.StateTransition) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, transition)
	return nil
}

// Transitions returns the recorded transitions for test assertions.
func (m *MockAuditRepository) Transitions() []*domain.StateTransition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.StateTransition, len(m.transitions))
	copy(result, m.transitions)
	return result
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner is a mock implementation of TxRunner. It hands the callback
// the shared mocks directly; writes are not rolled back on error.
type MockTxRunner struct {
	Repos repository.Repos

	// Counters
	InTxCallCount int32

	// Error injection: returned before fn runs.
	BeginError error

	// CommitHook runs after fn succeeds, at the point a real runner
	// commits. Lets tests observe state at commit time.
	CommitHook func()
}

// NewMockTxRunner creates a new mock transaction runner over the given mocks.
func NewMockTxRunner(
	drivers *MockDriverRepository,
	rides *MockRideRepository,
	trips *MockTripRepository,
	payments *MockPaymentRepository,
	outbox *MockOutboxRepository,
	audit *MockAuditRepository,
) *MockTxRunner {
	return &MockTxRunner{
		Repos: repository.Repos{
			Drivers:  drivers,
			Rides:    rides,
			Trips:    trips,
			Payments: payments,
			Outbox:   outbox,
			Audit:    audit,
		},
	}
}

func (m *MockTxRunner) InTx(ctx context.Context, fn func(r *repository.Repos) error) error {
	atomic.AddInt32(&m.InTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	if err := fn(&m.Repos); err != nil {
		return err
	}
	if m.CommitHook != nil {
		m.CommitHook()
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK GEO STORE
// ──────────────────────────────────────────────

// MockGeoStore is a mock implementation of GeoStoreInterface.
type MockGeoStore struct {
	mu      sync.RWMutex
	nearby  []redis.NearbyDriver
	members map[string]bool

	// Counters
	UpsertCallCount int32
	RemoveCallCount int32

	// Error injection
	UpsertError error
	RemoveError error
	SearchError error
}

// NewMockGeoStore creates a new mock geo store.
func NewMockGeoStore() *MockGeoStore {
	return &MockGeoStore{members: make(map[string]bool)}
}

// SetNearby sets the candidates SearchNearby returns.
func (m *MockGeoStore) SetNearby(nearby []redis.NearbyDriver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nearby = nearby
}

func (m *MockGeoStore) Upsert(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[driverID] = true
	return nil
}

func (m *MockGeoStore) Remove(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	if m.RemoveError != nil {
		return m.RemoveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, driverID)
	for i, n := range m.nearby {
		if n.DriverID == driverID {
			m.nearby = append(m.nearby[:i], m.nearby[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockGeoStore) SearchNearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]redis.NearbyDriver, error) {
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]redis.NearbyDriver, len(m.nearby))
	copy(result, m.nearby)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockGeoStore) IsFresh(ctx context.Context, driverID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.members[driverID], nil
}

// HasMember reports whether a driver is in the index.
func (m *MockGeoStore) HasMember(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.members[driverID]
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu      sync.RWMutex
	drivers map[string]*redis.CachedDriver

	// Counters
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{drivers: make(map[string]*redis.CachedDriver)}
}

func (m *MockCacheStore) GetDriver(ctx context.Context, driverID string) (*redis.CachedDriver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return nil, nil
	}
	cp := *driver
	return &cp, nil
}

func (m *MockCacheStore) SetDriver(ctx context.Context, driver *redis.CachedDriver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockCacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK IDEMPOTENCY STORE
// ──────────────────────────────────────────────

// MockIdempotencyStore is an in-memory IdempotencyStoreInterface.
type MockIdempotencyStore struct {
	mu        sync.RWMutex
	responses map[string]*redis.CachedResponse
}

// NewMockIdempotencyStore creates a new mock idempotency store.
func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{responses: make(map[string]*redis.CachedResponse)}
}

func (m *MockIdempotencyStore) Get(ctx context.Context, scope, key string) (*redis.CachedResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp, ok := m.responses[scope+":"+key]
	if !ok {
		return nil, nil
	}
	return resp, nil
}

func (m *MockIdempotencyStore) Set(ctx context.Context, scope, key string, resp *redis.CachedResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[scope+":"+key] = resp
	return nil
}
