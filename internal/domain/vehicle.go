package domain

import "github.com/shopspring/decimal"

// Vehicle represents a fleet vehicle.
//
// Meter is the current odometer reading; once a trip on this vehicle has
// ended, Meter always equals that trip's end meter.
type Vehicle struct {
	ID             string
	Plate          string
	Model          string
	Meter          int64
	DailyRate      decimal.Decimal
	FuelEfficiency decimal.Decimal // distance units per fuel unit
	Available      bool
}

// Driver represents a driver that can be assigned to trips.
type Driver struct {
	ID          string
	Name        string
	Phone       string
	DailyCharge decimal.Decimal
	Active      bool
}

// Customer represents a rental customer.
type Customer struct {
	ID    string
	Name  string
	Phone string
}
