package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentalops/internal/domain"
	"rentalops/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, vehicle_id, customer_id, driver_id,
	leaving_at, estimated_return_at, actual_return_at,
	start_meter, end_meter,
	mileage_rate, additional_mileage_rate, fuel_price, fuel_efficiency,
	driver_daily_rate, vehicle_daily_rate,
	discount, damage_cost, passengers, driver_required, fuel_required,
	actual_distance, actual_days, estimated_total, actual_total,
	paid_amount, payment_status, profit, status, created_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.VehicleID,
		trip.CustomerID,
		nullString(trip.DriverID),
		trip.LeavingAt,
		trip.EstimatedReturnAt,
		nullTime(trip.ActualReturnAt),
		trip.StartMeter,
		trip.EndMeter,
		trip.MileageRate,
		trip.AdditionalMileageRate,
		trip.FuelPrice,
		trip.FuelEfficiency,
		trip.DriverDailyRate,
		trip.VehicleDailyRate,
		trip.Discount,
		trip.DamageCost,
		trip.Passengers,
		trip.DriverRequired,
		trip.FuelRequired,
		trip.ActualDistance,
		trip.ActualDays,
		trip.EstimatedTotal,
		trip.ActualTotal,
		trip.PaidAmount,
		trip.PaymentStatus,
		trip.Profit,
		trip.Status,
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// List retrieves recent trips, newest first.
func (r *TripRepository) List(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update updates an existing trip, all derived fields included.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips SET
			driver_id = $1,
			leaving_at = $2, estimated_return_at = $3, actual_return_at = $4,
			start_meter = $5, end_meter = $6,
			discount = $7, damage_cost = $8,
			actual_distance = $9, actual_days = $10,
			estimated_total = $11, actual_total = $12,
			paid_amount = $13, payment_status = $14, profit = $15, status = $16
		WHERE id = $17
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.LeavingAt,
		trip.EstimatedReturnAt,
		nullTime(trip.ActualReturnAt),
		trip.StartMeter,
		trip.EndMeter,
		trip.Discount,
		trip.DamageCost,
		trip.ActualDistance,
		trip.ActualDays,
		trip.EstimatedTotal,
		trip.ActualTotal,
		trip.PaidAmount,
		trip.PaymentStatus,
		trip.Profit,
		trip.Status,
		trip.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetActiveByVehicleID retrieves the pending or ongoing trip for a vehicle.
// Returns nil if the vehicle has no open trip.
func (r *TripRepository) GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE vehicle_id = $1 AND status IN ($2, $3)
		LIMIT 1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, vehicleID,
		domain.TripStatusPending, domain.TripStatusOngoing))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

// ListOtherCosts retrieves the itemized extra costs of a trip.
func (r *TripRepository) ListOtherCosts(ctx context.Context, tripID string) ([]domain.OtherTripCost, error) {
	query := `SELECT id, trip_id, cost_type, amount FROM other_trip_costs WHERE trip_id = $1`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []domain.OtherTripCost
	for rows.Next() {
		var c domain.OtherTripCost
		if err := rows.Scan(&c.ID, &c.TripID, &c.CostType, &c.Amount); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}

	return costs, rows.Err()
}

// AddOtherCost attaches an extra cost line item to a trip.
func (r *TripRepository) AddOtherCost(ctx context.Context, cost *domain.OtherTripCost) error {
	query := `INSERT INTO other_trip_costs (id, trip_id, cost_type, amount) VALUES ($1, $2, $3, $4)`

	_, err := r.q.ExecContext(ctx, query, cost.ID, cost.TripID, cost.CostType, cost.Amount)
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID sql.NullString
	var actualReturnAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.VehicleID,
		&trip.CustomerID,
		&driverID,
		&trip.LeavingAt,
		&trip.EstimatedReturnAt,
		&actualReturnAt,
		&trip.StartMeter,
		&trip.EndMeter,
		&trip.MileageRate,
		&trip.AdditionalMileageRate,
		&trip.FuelPrice,
		&trip.FuelEfficiency,
		&trip.DriverDailyRate,
		&trip.VehicleDailyRate,
		&trip.Discount,
		&trip.DamageCost,
		&trip.Passengers,
		&trip.DriverRequired,
		&trip.FuelRequired,
		&trip.ActualDistance,
		&trip.ActualDays,
		&trip.EstimatedTotal,
		&trip.ActualTotal,
		&trip.PaidAmount,
		&trip.PaymentStatus,
		&trip.Profit,
		&trip.Status,
		&trip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		trip.DriverID = driverID.String
	}
	if actualReturnAt.Valid {
		trip.ActualReturnAt = actualReturnAt.Time
	}

	return &trip, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
