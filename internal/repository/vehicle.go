package repository

import (
	"context"

	"rentalops/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// List retrieves all vehicles.
	List(ctx context.Context) ([]*domain.Vehicle, error)

	// UpdateMeter sets the vehicle's current odometer reading.
	UpdateMeter(ctx context.Context, id string, meter int64) error

	// UpdateAvailability marks the vehicle available or booked.
	UpdateAvailability(ctx context.Context, id string, available bool) error
}

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create persists a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// List retrieves all drivers.
	List(ctx context.Context) ([]*domain.Driver, error)
}

// CustomerRepository defines the persistence operations for customers.
type CustomerRepository interface {
	// Create persists a new customer.
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	// GetByPhone retrieves a customer by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}
