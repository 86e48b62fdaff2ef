package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalops/internal/domain"
	"rentalops/internal/repository"
	"rentalops/internal/service"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	trips     *tripRepoMock
	vehicles  *vehicleRepoMock
	drivers   *driverRepoMock
	customers *customerRepoMock
	payments  *paymentRepoMock
	svc       *service.TripService
}

// newFixture builds a TripService over in-memory repositories with one
// available vehicle (meter 800, daily rate 100), one customer and one
// driver seeded. Rates: mileage 10, additional 15, fuel 1.
func newFixture(policy service.CancelPolicy) *fixture {
	f := &fixture{
		trips:     newTripRepoMock(),
		vehicles:  newVehicleRepoMock(),
		drivers:   newDriverRepoMock(),
		customers: newCustomerRepoMock(),
		payments:  newPaymentRepoMock(),
	}

	f.vehicles.vehicles["veh-1"] = domain.Vehicle{
		ID:             "veh-1",
		Plate:          "KA-01-1234",
		Model:          "Hatchback",
		Meter:          800,
		DailyRate:      dec("100"),
		FuelEfficiency: dec("10"),
		Available:      true,
	}
	f.customers.customers["cus-1"] = domain.Customer{ID: "cus-1", Name: "Asha", Phone: "9000000001"}
	f.drivers.drivers["drv-1"] = domain.Driver{ID: "drv-1", Name: "Ravi", DailyCharge: dec("200"), Active: true}

	atomic := &stubAtomic{repos: repository.Repos{
		Trips:    f.trips,
		Vehicles: f.vehicles,
		Payments: f.payments,
	}}

	rates := service.PricingRates{
		MileageRate:           dec("10"),
		AdditionalMileageRate: dec("15"),
		FuelPrice:             dec("1"),
	}

	f.svc = service.NewTripService(
		atomic, f.trips, f.vehicles, f.drivers, f.customers, f.payments,
		nil, nil, rates, policy,
	)
	return f
}

// createTrip books veh-1 with a departure 60 hours in the past so an
// immediate end prices at three rental days.
func (f *fixture) createTrip(t *testing.T) *domain.Trip {
	t.Helper()

	trip, err := f.svc.CreateTrip(context.Background(), service.CreateTripRequest{
		VehicleID:         "veh-1",
		CustomerID:        "cus-1",
		LeavingAt:         time.Now().Add(-60 * time.Hour),
		EstimatedReturnAt: time.Now().Add(12 * time.Hour),
		Passengers:        2,
	})
	require.NoError(t, err)
	return trip
}

func (f *fixture) startTrip(t *testing.T) *domain.Trip {
	t.Helper()

	trip := f.createTrip(t)
	trip, err := f.svc.StartTrip(context.Background(), trip.ID, 1000)
	require.NoError(t, err)
	return trip
}

// endTrip returns an ended trip with distance 500 over 3 days: gross and
// total 6300, fuel 50, profit 5950.
func (f *fixture) endTrip(t *testing.T) *domain.Trip {
	t.Helper()

	trip := f.startTrip(t)
	trip, err := f.svc.EndTrip(context.Background(), trip.ID, 1500)
	require.NoError(t, err)
	return trip
}

func TestCreateTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})

	leaving := time.Now()
	trip, err := f.svc.CreateTrip(context.Background(), service.CreateTripRequest{
		VehicleID:         "veh-1",
		CustomerID:        "cus-1",
		DriverID:          "drv-1",
		LeavingAt:         leaving,
		EstimatedReturnAt: leaving.Add(60 * time.Hour),
		DriverRequired:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TripStatusPending, trip.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, trip.PaymentStatus)

	// Rates are snapshotted off the service and the vehicle at creation.
	assert.True(t, trip.MileageRate.Equal(dec("10")))
	assert.True(t, trip.AdditionalMileageRate.Equal(dec("15")))
	assert.True(t, trip.FuelPrice.Equal(dec("1")))
	assert.True(t, trip.FuelEfficiency.Equal(dec("10")))
	assert.True(t, trip.VehicleDailyRate.Equal(dec("100")))
	assert.True(t, trip.DriverDailyRate.Equal(dec("200")))

	// 3 scheduled days of rent at 100 plus driver at 200.
	assert.True(t, trip.EstimatedTotal.Equal(dec("900")), "got %s", trip.EstimatedTotal)

	stored, err := f.trips.GetByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusPending, stored.Status)
}

func TestCreateTrip_Validation(t *testing.T) {
	t.Parallel()

	now := time.Now()

	cases := []struct {
		name    string
		req     service.CreateTripRequest
		wantErr error
	}{
		{
			"missing vehicle id",
			service.CreateTripRequest{CustomerID: "cus-1"},
			service.ErrInvalidVehicleID,
		},
		{
			"missing customer id",
			service.CreateTripRequest{VehicleID: "veh-1"},
			service.ErrInvalidCustomerID,
		},
		{
			"negative discount",
			service.CreateTripRequest{VehicleID: "veh-1", CustomerID: "cus-1", Discount: dec("-5")},
			service.ErrInvalidDiscount,
		},
		{
			"return before departure",
			service.CreateTripRequest{
				VehicleID: "veh-1", CustomerID: "cus-1",
				LeavingAt: now, EstimatedReturnAt: now.Add(-time.Hour),
			},
			service.ErrInvalidSchedule,
		},
		{
			"unknown vehicle",
			service.CreateTripRequest{VehicleID: "veh-404", CustomerID: "cus-1"},
			repository.ErrNotFound,
		},
		{
			"unknown customer",
			service.CreateTripRequest{VehicleID: "veh-1", CustomerID: "cus-404"},
			repository.ErrNotFound,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(service.CancelPolicy{})
			_, err := f.svc.CreateTrip(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateTrip_VehicleUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	vehicle := f.vehicles.vehicles["veh-1"]
	vehicle.Available = false
	f.vehicles.vehicles["veh-1"] = vehicle

	_, err := f.svc.CreateTrip(context.Background(), service.CreateTripRequest{
		VehicleID: "veh-1", CustomerID: "cus-1",
	})
	assert.ErrorIs(t, err, service.ErrVehicleUnavailable)
}

func TestCreateTrip_VehicleAlreadyBooked(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	f.createTrip(t)

	_, err := f.svc.CreateTrip(context.Background(), service.CreateTripRequest{
		VehicleID: "veh-1", CustomerID: "cus-1",
	})
	assert.ErrorIs(t, err, service.ErrVehicleBooked)
}

func TestTripLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()

	trip := f.createTrip(t)

	trip, err := f.svc.StartTrip(ctx, trip.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusOngoing, trip.Status)
	assert.Equal(t, int64(1000), trip.StartMeter)

	vehicle, err := f.vehicles.GetByID(ctx, "veh-1")
	require.NoError(t, err)
	assert.False(t, vehicle.Available, "starting must take the vehicle off the road")

	trip, err = f.svc.EndTrip(ctx, trip.ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusEnded, trip.Status)
	assert.Equal(t, int64(500), trip.ActualDistance)
	assert.Equal(t, 3, trip.ActualDays)
	assert.True(t, trip.ActualTotal.Equal(dec("6300")), "got %s", trip.ActualTotal)
	assert.True(t, trip.Profit.Equal(dec("5950")), "got %s", trip.Profit)
	assert.Equal(t, domain.PaymentStatusUnpaid, trip.PaymentStatus)

	vehicle, err = f.vehicles.GetByID(ctx, "veh-1")
	require.NoError(t, err)
	assert.True(t, vehicle.Available)
	assert.Equal(t, int64(1500), vehicle.Meter, "odometer rolls forward on return")

	trip, err = f.svc.AddPayment(ctx, trip.ID, dec("6300"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, trip.PaymentStatus)

	trip, err = f.svc.CompleteTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCompleted, trip.Status)

	_, err = f.svc.StartTrip(ctx, trip.ID, 1600)
	var transition *service.TransitionError
	assert.ErrorAs(t, err, &transition)

	_, err = f.svc.CancelTrip(ctx, trip.ID)
	assert.ErrorAs(t, err, &transition)
}

func TestStartTrip_MeterBehindVehicle(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.createTrip(t)

	_, err := f.svc.StartTrip(context.Background(), trip.ID, 700)
	assert.ErrorIs(t, err, service.ErrMeterBeforeVehicle)
}

func TestEndTrip_MeterBehindStart(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.startTrip(t)

	_, err := f.svc.EndTrip(context.Background(), trip.ID, 900)
	assert.ErrorIs(t, err, service.ErrMeterBeforeStart)
}

func TestEndTrip_RequiresOngoing(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.createTrip(t)

	_, err := f.svc.EndTrip(context.Background(), trip.ID, 1500)
	var transition *service.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.TripStatusPending, transition.From)
}

func TestCompleteTrip_RequiresFullPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()
	trip := f.endTrip(t)

	_, err := f.svc.AddPayment(ctx, trip.ID, dec("2000"))
	require.NoError(t, err)

	_, err = f.svc.CompleteTrip(ctx, trip.ID)
	var transition *service.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "payment not settled", transition.Reason)

	_, err = f.svc.AddPayment(ctx, trip.ID, dec("4300"))
	require.NoError(t, err)

	trip, err = f.svc.CompleteTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCompleted, trip.Status)
}

func TestAddPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()
	trip := f.endTrip(t)

	trip, err := f.svc.AddPayment(ctx, trip.ID, dec("2000"))
	require.NoError(t, err)
	assert.True(t, trip.PaidAmount.Equal(dec("2000")))
	assert.Equal(t, domain.PaymentStatusPartiallyPaid, trip.PaymentStatus)

	trip, err = f.svc.AddPayment(ctx, trip.ID, dec("4300"))
	require.NoError(t, err)
	assert.True(t, trip.PaidAmount.Equal(dec("6300")))
	assert.Equal(t, domain.PaymentStatusPaid, trip.PaymentStatus)

	_, err = f.svc.AddPayment(ctx, trip.ID, dec("0"))
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = f.svc.AddPayment(ctx, trip.ID, dec("-10"))
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestAddPayment_RequiresOpenTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.createTrip(t)

	_, err := f.svc.AddPayment(context.Background(), trip.ID, dec("100"))
	var transition *service.TransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestDeletePayment(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()
	trip := f.endTrip(t)

	_, err := f.svc.AddPayment(ctx, trip.ID, dec("2000"))
	require.NoError(t, err)
	trip, err = f.svc.AddPayment(ctx, trip.ID, dec("4300"))
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusPaid, trip.PaymentStatus)

	payments, err := f.payments.ListByTripID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)

	var target domain.Payment
	for _, p := range payments {
		if p.Amount.Equal(dec("4300")) {
			target = p
		}
	}
	require.NotEmpty(t, target.ID)

	trip, err = f.svc.DeletePayment(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, trip.PaidAmount.Equal(dec("2000")), "got %s", trip.PaidAmount)
	assert.Equal(t, domain.PaymentStatusPartiallyPaid, trip.PaymentStatus)

	_, err = f.svc.DeletePayment(ctx, target.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddDamage(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()
	trip := f.endTrip(t)
	before := *trip

	trip, err := f.svc.AddDamage(ctx, trip.ID, dec("800"))
	require.NoError(t, err)

	assert.True(t, trip.DamageCost.Equal(dec("800")))
	assert.True(t, trip.ActualTotal.Equal(before.ActualTotal.Add(dec("800"))))
	assert.True(t, trip.Profit.Equal(before.Profit), "damage is billed through, not earned")
	assert.Equal(t, before.ActualDays, trip.ActualDays)

	_, err = f.svc.AddDamage(ctx, trip.ID, dec("-1"))
	assert.ErrorIs(t, err, service.ErrInvalidDamageCost)
}

func TestAddDamage_RequiresEnded(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.startTrip(t)

	_, err := f.svc.AddDamage(context.Background(), trip.ID, dec("500"))
	var transition *service.TransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestAddExtraCost(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()
	trip := f.endTrip(t)
	before := *trip

	trip, err := f.svc.AddExtraCost(ctx, trip.ID, "toll", dec("250"))
	require.NoError(t, err)
	assert.True(t, trip.ActualTotal.Equal(before.ActualTotal.Add(dec("250"))))

	costs, err := f.trips.ListOtherCosts(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, costs, 1)
	assert.Equal(t, "toll", costs[0].CostType)

	_, err = f.svc.AddExtraCost(ctx, trip.ID, "", dec("10"))
	assert.ErrorIs(t, err, service.ErrInvalidCostType)

	_, err = f.svc.AddExtraCost(ctx, trip.ID, "parking", dec("0"))
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestAlterMeter_LockedDays(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	ctx := context.Background()
	trip := f.endTrip(t)
	require.Equal(t, 3, trip.ActualDays)

	trip, err := f.svc.AlterMeter(ctx, service.AlterMeterRequest{
		TripID:     trip.ID,
		EndMeter:   1300,
		LockedDays: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, trip.ActualDays, "a meter correction must not move the day count")
	assert.Equal(t, int64(300), trip.ActualDistance)
	// 300 units inside the 3-day allowance plus 3 days rent.
	assert.True(t, trip.ActualTotal.Equal(dec("3300")), "got %s", trip.ActualTotal)

	vehicle, err := f.vehicles.GetByID(ctx, "veh-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1300), vehicle.Meter)
}

func TestAlterMeter_MeterBehindStart(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.endTrip(t)

	_, err := f.svc.AlterMeter(context.Background(), service.AlterMeterRequest{
		TripID:   trip.ID,
		EndMeter: 900,
	})
	assert.ErrorIs(t, err, service.ErrMeterBeforeStart)
}

func TestCancelTrip_Pending(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.createTrip(t)

	trip, err := f.svc.CancelTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCancelled, trip.Status)
}

func TestCancelTrip_OngoingFreesVehicle(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{AllowFromOngoing: true})
	ctx := context.Background()
	trip := f.startTrip(t)

	trip, err := f.svc.CancelTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCancelled, trip.Status)

	vehicle, err := f.vehicles.GetByID(ctx, "veh-1")
	require.NoError(t, err)
	assert.True(t, vehicle.Available)
}

func TestCancelTrip_OngoingDisabledByPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{AllowFromOngoing: false})
	trip := f.startTrip(t)

	_, err := f.svc.CancelTrip(context.Background(), trip.ID)
	var transition *service.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.TripStatusOngoing, transition.From)
}

func TestCancelTrip_PaymentsRetainedByDefault(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{AllowFromOngoing: true})
	ctx := context.Background()
	trip := f.startTrip(t)

	_, err := f.svc.AddPayment(ctx, trip.ID, dec("1000"))
	require.NoError(t, err)

	trip, err = f.svc.CancelTrip(ctx, trip.ID)
	require.NoError(t, err)

	payments, err := f.payments.ListByTripID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1, "recorded payments stay for manual reconciliation")
	assert.True(t, trip.PaidAmount.Equal(dec("1000")))
}

func TestCancelTrip_ClearPaymentsPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{AllowFromOngoing: true, ClearPayments: true})
	ctx := context.Background()
	trip := f.startTrip(t)

	_, err := f.svc.AddPayment(ctx, trip.ID, dec("1000"))
	require.NoError(t, err)

	trip, err = f.svc.CancelTrip(ctx, trip.ID)
	require.NoError(t, err)

	payments, err := f.payments.ListByTripID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.True(t, trip.PaidAmount.IsZero())
	assert.Equal(t, domain.PaymentStatusUnpaid, trip.PaymentStatus)
}

func TestMutationsBlockedWhileLocked(t *testing.T) {
	t.Parallel()

	f := newFixture(service.CancelPolicy{})
	trip := f.createTrip(t)

	locked := service.NewTripService(
		&stubAtomic{repos: repository.Repos{Trips: f.trips, Vehicles: f.vehicles, Payments: f.payments}},
		f.trips, f.vehicles, f.drivers, f.customers, f.payments,
		heldLocker{}, nil,
		service.PricingRates{MileageRate: dec("10"), AdditionalMileageRate: dec("15"), FuelPrice: dec("1")},
		service.CancelPolicy{},
	)

	_, err := locked.StartTrip(context.Background(), trip.ID, 1000)
	assert.ErrorIs(t, err, service.ErrResourceLocked)

	_, err = locked.CreateTrip(context.Background(), service.CreateTripRequest{
		VehicleID: "veh-1", CustomerID: "cus-1",
	})
	assert.ErrorIs(t, err, service.ErrResourceLocked)
}
