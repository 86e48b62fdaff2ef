package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentalops/internal/domain"
	"rentalops/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, plate, model, meter, daily_rate, fuel_efficiency, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.Plate,
		vehicle.Model,
		vehicle.Meter,
		vehicle.DailyRate,
		vehicle.FuelEfficiency,
		vehicle.Available,
	)

	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, plate, model, meter, daily_rate, fuel_efficiency, available
		FROM vehicles WHERE id = $1
	`

	var v domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.Plate,
		&v.Model,
		&v.Meter,
		&v.DailyRate,
		&v.FuelEfficiency,
		&v.Available,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &v, nil
}

// List retrieves all vehicles.
func (r *VehicleRepository) List(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `
		SELECT id, plate, model, meter, daily_rate, fuel_efficiency, available
		FROM vehicles ORDER BY plate
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(
			&v.ID,
			&v.Plate,
			&v.Model,
			&v.Meter,
			&v.DailyRate,
			&v.FuelEfficiency,
			&v.Available,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}

	return vehicles, rows.Err()
}

// UpdateMeter sets the vehicle's current odometer reading.
func (r *VehicleRepository) UpdateMeter(ctx context.Context, id string, meter int64) error {
	return r.exec(ctx, `UPDATE vehicles SET meter = $1 WHERE id = $2`, meter, id)
}

// UpdateAvailability marks the vehicle available or booked.
func (r *VehicleRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	return r.exec(ctx, `UPDATE vehicles SET available = $1 WHERE id = $2`, available, id)
}

func (r *VehicleRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
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

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
