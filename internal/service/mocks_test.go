package service_test

import (
	"context"
	"sync"
	"time"

	"rentalops/internal/domain"
	"rentalops/internal/repository"
)

// The mocks below keep everything in maps and hand out copies, so a test
// only observes state the service actually persisted through Update.

type tripRepoMock struct {
	mu    sync.Mutex
	trips map[string]domain.Trip
	costs map[string][]domain.OtherTripCost
}

func newTripRepoMock() *tripRepoMock {
	return &tripRepoMock{
		trips: make(map[string]domain.Trip),
		costs: make(map[string][]domain.OtherTripCost),
	}
}

func (m *tripRepoMock) Create(_ context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = *trip
	return nil
}

func (m *tripRepoMock) GetByID(_ context.Context, id string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &trip, nil
}

func (m *tripRepoMock) List(_ context.Context) ([]*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Trip, 0, len(m.trips))
	for id := range m.trips {
		trip := m.trips[id]
		out = append(out, &trip)
	}
	return out, nil
}

func (m *tripRepoMock) Update(_ context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	m.trips[trip.ID] = *trip
	return nil
}

func (m *tripRepoMock) GetActiveByVehicleID(_ context.Context, vehicleID string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.trips {
		trip := m.trips[id]
		if trip.VehicleID != vehicleID {
			continue
		}
		if trip.Status == domain.TripStatusPending || trip.Status == domain.TripStatusOngoing {
			return &trip, nil
		}
	}
	return nil, nil
}

func (m *tripRepoMock) ListOtherCosts(_ context.Context, tripID string) ([]domain.OtherTripCost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OtherTripCost(nil), m.costs[tripID]...), nil
}

func (m *tripRepoMock) AddOtherCost(_ context.Context, cost *domain.OtherTripCost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costs[cost.TripID] = append(m.costs[cost.TripID], *cost)
	return nil
}

type vehicleRepoMock struct {
	mu       sync.Mutex
	vehicles map[string]domain.Vehicle
}

func newVehicleRepoMock() *vehicleRepoMock {
	return &vehicleRepoMock{vehicles: make(map[string]domain.Vehicle)}
}

func (m *vehicleRepoMock) Create(_ context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (m *vehicleRepoMock) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &vehicle, nil
}

func (m *vehicleRepoMock) List(_ context.Context) ([]*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Vehicle, 0, len(m.vehicles))
	for id := range m.vehicles {
		vehicle := m.vehicles[id]
		out = append(out, &vehicle)
	}
	return out, nil
}

func (m *vehicleRepoMock) UpdateMeter(_ context.Context, id string, meter int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Meter = meter
	m.vehicles[id] = vehicle
	return nil
}

func (m *vehicleRepoMock) UpdateAvailability(_ context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Available = available
	m.vehicles[id] = vehicle
	return nil
}

type driverRepoMock struct {
	mu      sync.Mutex
	drivers map[string]domain.Driver
}

func newDriverRepoMock() *driverRepoMock {
	return &driverRepoMock{drivers: make(map[string]domain.Driver)}
}

func (m *driverRepoMock) Create(_ context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = *driver
	return nil
}

func (m *driverRepoMock) GetByID(_ context.Context, id string) (*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &driver, nil
}

func (m *driverRepoMock) List(_ context.Context) ([]*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Driver, 0, len(m.drivers))
	for id := range m.drivers {
		driver := m.drivers[id]
		out = append(out, &driver)
	}
	return out, nil
}

type customerRepoMock struct {
	mu        sync.Mutex
	customers map[string]domain.Customer
}

func newCustomerRepoMock() *customerRepoMock {
	return &customerRepoMock{customers: make(map[string]domain.Customer)}
}

func (m *customerRepoMock) Create(_ context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[customer.ID] = *customer
	return nil
}

func (m *customerRepoMock) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &customer, nil
}

func (m *customerRepoMock) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.customers {
		customer := m.customers[id]
		if customer.Phone == phone {
			return &customer, nil
		}
	}
	return nil, repository.ErrNotFound
}

type paymentRepoMock struct {
	mu       sync.Mutex
	payments map[string]domain.Payment
}

func newPaymentRepoMock() *paymentRepoMock {
	return &paymentRepoMock{payments: make(map[string]domain.Payment)}
}

func (m *paymentRepoMock) Create(_ context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = *payment
	return nil
}

func (m *paymentRepoMock) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &payment, nil
}

func (m *paymentRepoMock) ListByTripID(_ context.Context, tripID string) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payment
	for id := range m.payments {
		payment := m.payments[id]
		if payment.TripID == tripID {
			out = append(out, payment)
		}
	}
	return out, nil
}

func (m *paymentRepoMock) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

// stubAtomic satisfies repository.Atomic by running the unit of work
// directly against the backing mocks. Rollback semantics are not
// simulated; transition tests assert on happy-path persistence.
type stubAtomic struct {
	repos repository.Repos
}

func (a *stubAtomic) Transact(_ context.Context, fn func(repository.Repos) error) error {
	return fn(a.repos)
}

// heldLocker reports every key as already taken.
type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}

func (heldLocker) AcquireWait(context.Context, string, time.Duration, time.Duration) (bool, error) {
	return false, nil
}

func (heldLocker) Release(context.Context, string) error { return nil }
