package domain

import "github.com/shopspring/decimal"

// OtherTripCost is an itemized extra cost attached to a trip, billed on
// top of mileage, rent and driver charges.
type OtherTripCost struct {
	ID       string
	TripID   string
	CostType string
	Amount   decimal.Decimal
}

// TripSnapshot is an immutable view of a trip together with its vehicle,
// assigned driver and itemized extras, used as calculation input.
type TripSnapshot struct {
	Trip       *Trip
	Vehicle    *Vehicle
	Driver     *Driver // nil when not assigned
	OtherCosts []OtherTripCost
	Payments   []Payment
}

// ResolveFuelEfficiency returns the trip's snapshotted fuel efficiency,
// falling back to the vehicle's stored value when the trip lacks its own.
func (s *TripSnapshot) ResolveFuelEfficiency() decimal.Decimal {
	if s.Trip.FuelEfficiency.IsPositive() {
		return s.Trip.FuelEfficiency
	}
	if s.Vehicle != nil {
		return s.Vehicle.FuelEfficiency
	}
	return decimal.Zero
}

// ResolveDriverDailyRate returns the trip's locked driver rate, falling
// back to the assigned driver's current charge.
func (s *TripSnapshot) ResolveDriverDailyRate() decimal.Decimal {
	if s.Trip.DriverDailyRate.IsPositive() {
		return s.Trip.DriverDailyRate
	}
	if s.Driver != nil {
		return s.Driver.DailyCharge
	}
	return decimal.Zero
}

// OtherCostTotal sums the trip's itemized extra costs.
func (s *TripSnapshot) OtherCostTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.OtherCosts {
		total = total.Add(c.Amount)
	}
	return total
}

// PaymentTotal sums the payments recorded against the trip.
func (s *TripSnapshot) PaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.Amount)
	}
	return total
}
