package repository

import (
	"context"

	"rentalops/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// List retrieves recent trips, newest first.
	List(ctx context.Context) ([]*domain.Trip, error)

	// Update updates an existing trip, all derived fields included.
	Update(ctx context.Context, trip *domain.Trip) error

	// GetActiveByVehicleID retrieves the pending or ongoing trip for a
	// vehicle. Returns nil if the vehicle has no open trip.
	GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error)

	// ListOtherCosts retrieves the itemized extra costs of a trip.
	ListOtherCosts(ctx context.Context, tripID string) ([]domain.OtherTripCost, error)

	// AddOtherCost attaches an extra cost line item to a trip.
	AddOtherCost(ctx context.Context, cost *domain.OtherTripCost) error
}

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// ListByTripID retrieves all payments recorded against a trip.
	ListByTripID(ctx context.Context, tripID string) ([]domain.Payment, error)

	// Delete removes a payment.
	Delete(ctx context.Context, id string) error
}
