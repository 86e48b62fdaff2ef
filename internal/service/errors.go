package service

import (
	"errors"
	"fmt"

	"rentalops/internal/domain"
)

var (
	// ErrInvalidTripID is returned when the trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidVehicleID is returned when the vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidCustomerID is returned when the customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidPaymentID is returned when the payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidAmount is returned when a payment amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidDiscount is returned when a discount is negative.
	ErrInvalidDiscount = errors.New("discount must not be negative")

	// ErrInvalidDamageCost is returned when a damage cost is negative.
	ErrInvalidDamageCost = errors.New("damage cost must not be negative")

	// ErrInvalidCostType is returned when an extra cost has no type label.
	ErrInvalidCostType = errors.New("cost type is required")

	// ErrInvalidMeter is returned when a meter reading is negative.
	ErrInvalidMeter = errors.New("meter reading must not be negative")

	// ErrMeterBeforeStart is returned when an end reading is below the
	// trip's start reading.
	ErrMeterBeforeStart = errors.New("end meter is below the trip's start meter")

	// ErrMeterBeforeVehicle is returned when a start reading is below the
	// vehicle's last known odometer value.
	ErrMeterBeforeVehicle = errors.New("start meter is below the vehicle's current odometer")

	// ErrInvalidSchedule is returned when the estimated return precedes
	// the leaving time.
	ErrInvalidSchedule = errors.New("estimated return must not precede leaving time")

	// ErrVehicleUnavailable is returned when the vehicle is not available
	// for booking.
	ErrVehicleUnavailable = errors.New("vehicle is not available")

	// ErrVehicleBooked is returned when the vehicle already has an open trip.
	ErrVehicleBooked = errors.New("vehicle already has an open trip")

	// ErrResourceLocked is returned when the per-resource lock could not
	// be acquired within the wait budget.
	ErrResourceLocked = errors.New("resource is locked by another operation")
)

// TransitionError reports a lifecycle operation attempted from a status
// that disallows it. The current status is carried for caller diagnostics.
type TransitionError struct {
	Op     string
	From   domain.TripStatus
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s trip in status %s: %s", e.Op, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s trip in status %s", e.Op, e.From)
}

// ConsistencyError reports an invariant violation detected before commit.
// It is fatal to the operation and never retried.
type ConsistencyError struct {
	Msg string
	Err error
}

func (e *ConsistencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("consistency violation: %s: %v", e.Msg, e.Err)
	}
	return "consistency violation: " + e.Msg
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
