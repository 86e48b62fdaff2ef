package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"rentalops/internal/domain"
)

// DailyAllowance is the free distance granted per rental day before the
// additional mileage rate applies.
const DailyAllowance int64 = 100

var (
	// ErrMissingSnapshot is returned when the calculation input lacks a trip.
	ErrMissingSnapshot = errors.New("pricing: snapshot has no trip")

	// ErrMissingDailyRate is returned when the trip carries no vehicle
	// daily rate. A missing price snapshot is fatal, never defaulted.
	ErrMissingDailyRate = errors.New("pricing: trip has no vehicle daily rate")
)

// Input carries the per-calculation parameters.
type Input struct {
	// EndMeter is the odometer reading at return. Readings below the
	// start meter clamp the distance to zero; rejecting them as a
	// business error is the lifecycle service's job, not ours.
	EndMeter int64

	// ReturnedAt is the actual return time. When zero the trip's stored
	// return time is used, and failing that the current time.
	ReturnedAt time.Time

	// DaysOverride, when positive, is used verbatim instead of the
	// date-based day count. Used when re-pricing after a meter
	// correction must not silently change an already-fixed day count.
	DaysOverride int
}

// Result is the priced outcome of a trip.
type Result struct {
	ActualDistance         int64
	ActualDays             int
	DefaultDistanceCost    decimal.Decimal
	AdditionalDistanceCost decimal.Decimal
	FuelCost               decimal.Decimal
	DriverCost             decimal.Decimal
	OtherCosts             decimal.Decimal
	Gross                  decimal.Decimal
	DiscountApplied        decimal.Decimal
	DamageCost             decimal.Decimal
	Total                  decimal.Decimal
	Profit                 decimal.Decimal
}

// Calculate prices a trip from its snapshot and the given reading. It is a
// pure function: no clocks are read beyond the documented fallback, and
// nothing is mutated.
//
// The customer is billed rent, tiered mileage, driver charge and extras,
// less the (capped) discount, plus damage. Fuel is an operating cost
// absorbed by the operator: it reduces profit but is never billed.
func Calculate(snap *domain.TripSnapshot, in Input) (Result, error) {
	if snap == nil || snap.Trip == nil {
		return Result{}, ErrMissingSnapshot
	}

	trip := snap.Trip
	if !trip.VehicleDailyRate.IsPositive() {
		return Result{}, ErrMissingDailyRate
	}

	distance := in.EndMeter - trip.StartMeter
	if distance < 0 {
		distance = 0
	}

	days := in.DaysOverride
	if days <= 0 {
		days = elapsedDays(trip.LeavingAt, returnTime(trip, in))
	}

	// Tiered mileage: each day grants DailyAllowance free units.
	allowance := int64(days) * DailyAllowance
	defaultDistance := distance
	if defaultDistance > allowance {
		defaultDistance = allowance
	}
	additionalDistance := distance - defaultDistance

	defaultCost := decimal.NewFromInt(defaultDistance).Mul(trip.MileageRate)
	additionalCost := decimal.NewFromInt(additionalDistance).Mul(trip.AdditionalMileageRate)

	fuelCost := decimal.Zero
	if eff := snap.ResolveFuelEfficiency(); eff.IsPositive() {
		fuelCost = decimal.NewFromInt(distance).Div(eff).Mul(trip.FuelPrice).Round(2)
	}

	driverCost := decimal.Zero
	if trip.DriverRequired {
		driverCost = snap.ResolveDriverDailyRate().Mul(decimal.NewFromInt(int64(days)))
	}

	otherCosts := snap.OtherCostTotal()
	rent := trip.VehicleDailyRate.Mul(decimal.NewFromInt(int64(days)))

	gross := rent.Add(defaultCost).Add(additionalCost).Add(driverCost).Add(otherCosts)

	discount := trip.Discount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(gross) {
		discount = gross
	}

	damage := trip.DamageCost
	if damage.IsNegative() {
		damage = decimal.Zero
	}

	total := gross.Sub(discount).Add(damage)

	// Internal cost basis includes fuel but excludes damage: damage is a
	// pass-through charge to the responsible party, not operator revenue.
	actualCosts := rent.Add(driverCost).Add(otherCosts).Add(fuelCost)
	profit := gross.Sub(actualCosts).Sub(discount)

	return Result{
		ActualDistance:         distance,
		ActualDays:             days,
		DefaultDistanceCost:    defaultCost,
		AdditionalDistanceCost: additionalCost,
		FuelCost:               fuelCost,
		DriverCost:             driverCost,
		OtherCosts:             otherCosts,
		Gross:                  gross,
		DiscountApplied:        discount,
		DamageCost:             damage,
		Total:                  total.Round(2),
		Profit:                 profit.Round(2),
	}, nil
}

// Estimate computes the creation-time estimated total for a trip: rent and
// driver charge over the scheduled duration. Mileage and fuel depend on
// meter readings and are excluded from the estimate.
func Estimate(snap *domain.TripSnapshot) (decimal.Decimal, error) {
	if snap == nil || snap.Trip == nil {
		return decimal.Zero, ErrMissingSnapshot
	}

	trip := snap.Trip
	if !trip.VehicleDailyRate.IsPositive() {
		return decimal.Zero, ErrMissingDailyRate
	}

	days := elapsedDays(trip.LeavingAt, trip.EstimatedReturnAt)
	estimate := trip.VehicleDailyRate.Mul(decimal.NewFromInt(int64(days)))
	if trip.DriverRequired {
		estimate = estimate.Add(snap.ResolveDriverDailyRate().Mul(decimal.NewFromInt(int64(days))))
	}

	return estimate.Round(2), nil
}

// returnTime resolves the effective return time: explicit input first, then
// the trip's stored return time, then now.
func returnTime(trip *domain.Trip, in Input) time.Time {
	if !in.ReturnedAt.IsZero() {
		return in.ReturnedAt
	}
	if !trip.ActualReturnAt.IsZero() {
		return trip.ActualReturnAt
	}
	return time.Now()
}

// elapsedDays counts calendar-style rental days between two instants:
// ceil of the elapsed duration in days, never less than one. Zero-valued
// dates fall back to the current time so corrupt stored rows cannot
// poison the arithmetic.
func elapsedDays(from, to time.Time) int {
	if from.IsZero() {
		from = time.Now()
	}
	if to.IsZero() {
		to = time.Now()
	}

	days := int(math.Ceil(to.Sub(from).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}
