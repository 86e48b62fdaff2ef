package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentalops/internal/domain"
	"rentalops/internal/pricing"
	"rentalops/internal/redis"
	"rentalops/internal/repository"
)

// defaultLockWait bounds how long a mutation waits for the per-resource
// lock before giving up with ErrResourceLocked.
const defaultLockWait = 2 * time.Second

// PricingRates are the operator's global rates, snapshotted onto each new
// trip at creation so later rate changes never touch in-flight trips.
type PricingRates struct {
	MileageRate           decimal.Decimal
	AdditionalMileageRate decimal.Decimal
	FuelPrice             decimal.Decimal
}

// CancelPolicy governs the cancellation transition. The source system left
// recorded payments untouched on cancel; that stays the default but is a
// policy knob rather than a hard-coded behavior.
type CancelPolicy struct {
	// AllowFromOngoing permits cancelling a trip that has already started.
	AllowFromOngoing bool

	// ClearPayments deletes recorded payments on cancel instead of
	// leaving them for manual reconciliation.
	ClearPayments bool
}

// TripService is the single authority over the trip lifecycle: it
// validates transitions, re-derives costs and payment status, and commits
// each transition atomically.
type TripService struct {
	atomic    repository.Atomic
	trips     repository.TripRepository
	vehicles  repository.VehicleRepository
	drivers   repository.DriverRepository
	customers repository.CustomerRepository
	payments  repository.PaymentRepository
	locks     redis.Locker
	cache     *redis.CacheStore

	rates    PricingRates
	policy   CancelPolicy
	lockWait time.Duration
}

// NewTripService creates a new TripService. cache may be nil; locks may be
// nil only in tests.
func NewTripService(
	atomic repository.Atomic,
	trips repository.TripRepository,
	vehicles repository.VehicleRepository,
	drivers repository.DriverRepository,
	customers repository.CustomerRepository,
	payments repository.PaymentRepository,
	locks redis.Locker,
	cache *redis.CacheStore,
	rates PricingRates,
	policy CancelPolicy,
) *TripService {
	return &TripService{
		atomic:    atomic,
		trips:     trips,
		vehicles:  vehicles,
		drivers:   drivers,
		customers: customers,
		payments:  payments,
		locks:     locks,
		cache:     cache,
		rates:     rates,
		policy:    policy,
		lockWait:  defaultLockWait,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	VehicleID         string
	CustomerID        string
	DriverID          string
	LeavingAt         time.Time
	EstimatedReturnAt time.Time
	Passengers        int
	DriverRequired    bool
	FuelRequired      bool
	Discount          decimal.Decimal
}

// CreateTrip books a vehicle for a customer. Creation is serialized per
// vehicle so two concurrent requests cannot double-book it.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if req.CustomerID == "" {
		return nil, ErrInvalidCustomerID
	}
	if req.Discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}
	if !req.EstimatedReturnAt.IsZero() && req.EstimatedReturnAt.Before(req.LeavingAt) {
		return nil, ErrInvalidSchedule
	}

	var trip *domain.Trip
	err := s.withLock(ctx, redis.BookingLockKey(req.VehicleID), redis.BookingLockTTL, func() error {
		vehicle, err := s.vehicles.GetByID(ctx, req.VehicleID)
		if err != nil {
			return err
		}
		if !vehicle.Available {
			return ErrVehicleUnavailable
		}

		if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
			return err
		}

		var driver *domain.Driver
		if req.DriverID != "" {
			if driver, err = s.drivers.GetByID(ctx, req.DriverID); err != nil {
				return err
			}
		}

		open, err := s.trips.GetActiveByVehicleID(ctx, req.VehicleID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrVehicleBooked
		}

		leavingAt := req.LeavingAt
		if leavingAt.IsZero() {
			leavingAt = time.Now()
		}

		trip = &domain.Trip{
			ID:         uuid.New().String(),
			VehicleID:  req.VehicleID,
			CustomerID: req.CustomerID,
			DriverID:   req.DriverID,

			LeavingAt:         leavingAt,
			EstimatedReturnAt: req.EstimatedReturnAt,

			MileageRate:           s.rates.MileageRate,
			AdditionalMileageRate: s.rates.AdditionalMileageRate,
			FuelPrice:             s.rates.FuelPrice,
			FuelEfficiency:        vehicle.FuelEfficiency,
			VehicleDailyRate:      vehicle.DailyRate,

			Discount:       req.Discount,
			Passengers:     req.Passengers,
			DriverRequired: req.DriverRequired,
			FuelRequired:   req.FuelRequired,

			PaymentStatus: domain.PaymentStatusUnpaid,
			Status:        domain.TripStatusPending,
			CreatedAt:     time.Now(),
		}
		if driver != nil {
			trip.DriverDailyRate = driver.DailyCharge
		}

		estimate, err := pricing.Estimate(&domain.TripSnapshot{Trip: trip, Vehicle: vehicle, Driver: driver})
		if err != nil {
			return &ConsistencyError{Msg: "estimating trip cost", Err: err}
		}
		trip.EstimatedTotal = estimate

		return s.trips.Create(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	return trip, nil
}

// StartTrip moves a pending trip to ongoing, recording the start meter.
func (s *TripService) StartTrip(ctx context.Context, tripID string, startMeter int64) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if startMeter < 0 {
		return nil, ErrInvalidMeter
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusPending {
			return &TransitionError{Op: "start", From: trip.Status}
		}
		if startMeter < snap.Vehicle.Meter {
			return ErrMeterBeforeVehicle
		}

		trip.StartMeter = startMeter
		trip.Status = domain.TripStatusOngoing

		err := s.atomic.Transact(ctx, func(r repository.Repos) error {
			if err := r.Trips.Update(ctx, trip); err != nil {
				return err
			}
			return r.Vehicles.UpdateAvailability(ctx, trip.VehicleID, false)
		})
		if err != nil {
			return err
		}

		s.vehicleBooked(ctx, trip.VehicleID)
		return nil
	})
}

// EndTrip ends an ongoing trip: prices it from the end meter and the
// current time, rolls the vehicle odometer forward, and frees the vehicle.
func (s *TripService) EndTrip(ctx context.Context, tripID string, endMeter int64) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusOngoing {
			return &TransitionError{Op: "end", From: trip.Status}
		}
		if endMeter < trip.StartMeter {
			return ErrMeterBeforeStart
		}

		now := time.Now()
		trip.EndMeter = endMeter
		trip.ActualReturnAt = now

		if err := s.reprice(snap, pricing.Input{EndMeter: endMeter, ReturnedAt: now}); err != nil {
			return err
		}
		trip.Status = domain.TripStatusEnded

		err := s.atomic.Transact(ctx, func(r repository.Repos) error {
			if err := r.Trips.Update(ctx, trip); err != nil {
				return err
			}
			if err := r.Vehicles.UpdateMeter(ctx, trip.VehicleID, endMeter); err != nil {
				return err
			}
			return r.Vehicles.UpdateAvailability(ctx, trip.VehicleID, true)
		})
		if err != nil {
			return err
		}

		s.vehicleFreed(ctx, trip.VehicleID)
		return nil
	})
}

// AlterMeterRequest contains the parameters for an operator correction of
// an already-recorded end meter or return date.
type AlterMeterRequest struct {
	TripID   string
	EndMeter int64

	// ReturnedAt, when set, replaces the stored actual return time.
	ReturnedAt time.Time

	// LockedDays, when positive, pins the day count so a meter correction
	// cannot silently change the already-fixed number of rental days.
	LockedDays int
}

// AlterMeter re-prices a trip after a meter or date correction. Legal on
// ended trips and, as an operator correction, on ongoing ones.
func (s *TripService) AlterMeter(ctx context.Context, req AlterMeterRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.mutate(ctx, req.TripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusEnded && trip.Status != domain.TripStatusOngoing {
			return &TransitionError{Op: "alter meter on", From: trip.Status}
		}
		if req.EndMeter < trip.StartMeter {
			return ErrMeterBeforeStart
		}

		trip.EndMeter = req.EndMeter
		if !req.ReturnedAt.IsZero() {
			trip.ActualReturnAt = req.ReturnedAt
		}

		in := pricing.Input{EndMeter: req.EndMeter, DaysOverride: req.LockedDays}
		if err := s.reprice(snap, in); err != nil {
			return err
		}

		return s.atomic.Transact(ctx, func(r repository.Repos) error {
			if err := r.Trips.Update(ctx, trip); err != nil {
				return err
			}
			if trip.Status == domain.TripStatusEnded {
				return r.Vehicles.UpdateMeter(ctx, trip.VehicleID, req.EndMeter)
			}
			return nil
		})
	})
}

// AddPayment records a payment against an ongoing or ended trip and
// re-derives the payment status.
func (s *TripService) AddPayment(ctx context.Context, tripID string, amount decimal.Decimal) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusOngoing && trip.Status != domain.TripStatusEnded {
			return &TransitionError{Op: "add payment to", From: trip.Status}
		}

		payment := &domain.Payment{
			ID:     uuid.New().String(),
			TripID: trip.ID,
			Amount: amount,
			PaidAt: time.Now(),
		}

		trip.PaidAmount = snap.PaymentTotal().Add(amount)
		trip.PaymentStatus = domain.DerivePaymentStatus(trip.PaidAmount, trip.ActualTotal)

		return s.atomic.Transact(ctx, func(r repository.Repos) error {
			if err := r.Payments.Create(ctx, payment); err != nil {
				return err
			}
			return r.Trips.Update(ctx, trip)
		})
	})
}

// DeletePayment removes a recorded payment (administrative) and re-derives
// the trip's paid amount and payment status.
func (s *TripService) DeletePayment(ctx context.Context, paymentID string) (*domain.Trip, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, payment.TripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip

		trip.PaidAmount = snap.PaymentTotal().Sub(payment.Amount)
		trip.PaymentStatus = domain.DerivePaymentStatus(trip.PaidAmount, trip.ActualTotal)

		return s.atomic.Transact(ctx, func(r repository.Repos) error {
			if err := r.Payments.Delete(ctx, payment.ID); err != nil {
				return err
			}
			return r.Trips.Update(ctx, trip)
		})
	})
}

// AddDamage sets the damage cost of an ended trip and re-prices it. The
// day count is pinned so damage entry never shifts the rental duration.
func (s *TripService) AddDamage(ctx context.Context, tripID string, amount decimal.Decimal) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if amount.IsNegative() {
		return nil, ErrInvalidDamageCost
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusEnded {
			return &TransitionError{Op: "add damage to", From: trip.Status}
		}

		trip.DamageCost = amount
		in := pricing.Input{EndMeter: trip.EndMeter, DaysOverride: trip.ActualDays}
		if err := s.reprice(snap, in); err != nil {
			return err
		}

		return s.atomic.Transact(ctx, func(r repository.Repos) error {
			return r.Trips.Update(ctx, trip)
		})
	})
}

// AddExtraCost attaches an itemized extra cost to an ongoing or ended
// trip, re-pricing ended trips against the enlarged gross amount.
func (s *TripService) AddExtraCost(ctx context.Context, tripID, costType string, amount decimal.Decimal) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if costType == "" {
		return nil, ErrInvalidCostType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusOngoing && trip.Status != domain.TripStatusEnded {
			return &TransitionError{Op: "add extra cost to", From: trip.Status}
		}

		cost := domain.OtherTripCost{
			ID:       uuid.New().String(),
			TripID:   trip.ID,
			CostType: costType,
			Amount:   amount,
		}
		snap.OtherCosts = append(snap.OtherCosts, cost)

		if trip.Status == domain.TripStatusEnded {
			in := pricing.Input{EndMeter: trip.EndMeter, DaysOverride: trip.ActualDays}
			if err := s.reprice(snap, in); err != nil {
				return err
			}
		}

		return s.atomic.Transact(ctx, func(r repository.Repos) error {
			if err := r.Trips.AddOtherCost(ctx, &cost); err != nil {
				return err
			}
			return r.Trips.Update(ctx, trip)
		})
	})
}

// CompleteTrip closes out an ended, fully paid trip.
func (s *TripService) CompleteTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		if trip.Status != domain.TripStatusEnded {
			return &TransitionError{Op: "complete", From: trip.Status}
		}
		if trip.PaymentStatus != domain.PaymentStatusPaid {
			return &TransitionError{Op: "complete", From: trip.Status, Reason: "payment not settled"}
		}

		trip.Status = domain.TripStatusCompleted
		return s.atomic.Transact(ctx, func(r repository.Repos) error {
			return r.Trips.Update(ctx, trip)
		})
	})
}

// CancelTrip cancels a pending trip, or an ongoing one when policy allows.
// Recorded payments are retained for manual reconciliation unless the
// cancel policy clears them.
func (s *TripService) CancelTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.mutate(ctx, tripID, func(snap *domain.TripSnapshot) error {
		trip := snap.Trip
		switch trip.Status {
		case domain.TripStatusPending:
		case domain.TripStatusOngoing:
			if !s.policy.AllowFromOngoing {
				return &TransitionError{Op: "cancel", From: trip.Status, Reason: "cancellation from ongoing is disabled"}
			}
		default:
			return &TransitionError{Op: "cancel", From: trip.Status}
		}

		wasOngoing := trip.Status == domain.TripStatusOngoing
		trip.Status = domain.TripStatusCancelled

		if s.policy.ClearPayments {
			trip.PaidAmount = decimal.Zero
			trip.PaymentStatus = domain.PaymentStatusUnpaid
		}

		err := s.atomic.Transact(ctx, func(r repository.Repos) error {
			if s.policy.ClearPayments {
				for _, p := range snap.Payments {
					if err := r.Payments.Delete(ctx, p.ID); err != nil {
						return err
					}
				}
			}
			if err := r.Trips.Update(ctx, trip); err != nil {
				return err
			}
			if wasOngoing {
				return r.Vehicles.UpdateAvailability(ctx, trip.VehicleID, true)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if wasOngoing {
			s.vehicleFreed(ctx, trip.VehicleID)
		}
		return nil
	})
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.trips.GetByID(ctx, tripID)
}

// GetTripSnapshot retrieves a trip with its vehicle, driver, extra costs
// and payments.
func (s *TripService) GetTripSnapshot(ctx context.Context, tripID string) (*domain.TripSnapshot, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.loadSnapshot(ctx, tripID)
}

// ListTrips retrieves recent trips.
func (s *TripService) ListTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.trips.List(ctx)
}

// mutate runs fn holding the trip's mutation lock, with a freshly loaded
// snapshot, and returns the mutated trip on success.
func (s *TripService) mutate(ctx context.Context, tripID string, fn func(*domain.TripSnapshot) error) (*domain.Trip, error) {
	var trip *domain.Trip
	err := s.withLock(ctx, redis.TripLockKey(tripID), redis.TripLockTTL, func() error {
		snap, err := s.loadSnapshot(ctx, tripID)
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		trip = snap.Trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// withLock serializes fn on the given key. A nil lock store (tests) runs
// fn unguarded.
func (s *TripService) withLock(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	if s.locks == nil {
		return fn()
	}

	ok, err := s.locks.AcquireWait(ctx, key, ttl, s.lockWait)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResourceLocked
	}
	defer func() { _ = s.locks.Release(ctx, key) }()

	return fn()
}

// loadSnapshot assembles the calculation input for a trip.
func (s *TripService) loadSnapshot(ctx context.Context, tripID string) (*domain.TripSnapshot, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}

	var driver *domain.Driver
	if trip.DriverID != "" {
		if driver, err = s.drivers.GetByID(ctx, trip.DriverID); err != nil {
			return nil, err
		}
	}

	costs, err := s.trips.ListOtherCosts(ctx, tripID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return &domain.TripSnapshot{
		Trip:       trip,
		Vehicle:    vehicle,
		Driver:     driver,
		OtherCosts: costs,
		Payments:   payments,
	}, nil
}

// reprice runs the cost calculator over the snapshot and folds the result
// into the trip's derived fields, re-deriving the payment status against
// the new total.
func (s *TripService) reprice(snap *domain.TripSnapshot, in pricing.Input) error {
	result, err := pricing.Calculate(snap, in)
	if err != nil {
		return &ConsistencyError{Msg: "pricing trip", Err: err}
	}
	if result.Total.IsNegative() {
		return &ConsistencyError{Msg: "computed total is negative"}
	}

	trip := snap.Trip
	trip.ActualDistance = result.ActualDistance
	trip.ActualDays = result.ActualDays
	trip.ActualTotal = result.Total
	trip.Profit = result.Profit
	trip.PaidAmount = snap.PaymentTotal()
	trip.PaymentStatus = domain.DerivePaymentStatus(trip.PaidAmount, trip.ActualTotal)

	return nil
}

// vehicleBooked and vehicleFreed keep the availability cache in step with
// committed state. Cache failures are not surfaced: the database is the
// source of truth and entries expire on their own.
func (s *TripService) vehicleBooked(ctx context.Context, vehicleID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.RemoveAvailableVehicle(ctx, vehicleID)
	_ = s.cache.InvalidateVehicle(ctx, vehicleID)
}

func (s *TripService) vehicleFreed(ctx context.Context, vehicleID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.AddAvailableVehicle(ctx, vehicleID)
	_ = s.cache.InvalidateVehicle(ctx, vehicleID)
}
