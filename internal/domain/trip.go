package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPending   TripStatus = "PENDING"
	TripStatusOngoing   TripStatus = "ONGOING"
	TripStatusEnded     TripStatus = "ENDED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Trip represents a single rental from pickup to return.
//
// The pricing fields are a snapshot captured at creation so that later
// changes to vehicle or driver rates never retroactively alter an
// in-flight trip. The derived fields (ActualTotal, PaidAmount,
// PaymentStatus, Profit) are owned by the lifecycle service and must
// never be written directly by callers.
type Trip struct {
	ID         string
	VehicleID  string
	CustomerID string
	DriverID   string // empty when no driver is assigned

	LeavingAt         time.Time
	EstimatedReturnAt time.Time
	ActualReturnAt    time.Time // zero until the trip ends

	StartMeter int64 // odometer at start, valid once status leaves PENDING
	EndMeter   int64 // odometer at end, valid once status reaches ENDED

	// Pricing snapshot.
	MileageRate           decimal.Decimal // per unit within the daily allowance
	AdditionalMileageRate decimal.Decimal // per unit beyond the daily allowance
	FuelPrice             decimal.Decimal // per fuel unit
	FuelEfficiency        decimal.Decimal // distance units per fuel unit; zero falls back to the vehicle
	DriverDailyRate       decimal.Decimal // zero falls back to the assigned driver's charge
	VehicleDailyRate      decimal.Decimal

	Discount       decimal.Decimal
	DamageCost     decimal.Decimal
	Passengers     int
	DriverRequired bool
	FuelRequired   bool

	// Derived outputs.
	ActualDistance int64
	ActualDays     int
	EstimatedTotal decimal.Decimal
	ActualTotal    decimal.Decimal
	PaidAmount     decimal.Decimal
	PaymentStatus  PaymentStatus
	Profit         decimal.Decimal

	Status    TripStatus
	CreatedAt time.Time
}
