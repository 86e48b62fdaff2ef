package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
)

// Repos bundles the transaction-scoped repositories handed to an atomic
// unit of work.
type Repos struct {
	Trips    TripRepository
	Vehicles VehicleRepository
	Payments PaymentRepository
}

// Atomic runs a unit of work in which all writes commit together or not
// at all. Lifecycle transitions use it so a trip's derived fields, the
// vehicle odometer and payment rows can never be persisted partially.
type Atomic interface {
	Transact(ctx context.Context, fn func(Repos) error) error
}
