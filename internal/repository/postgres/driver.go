package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentalops/internal/domain"
	"rentalops/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// Create persists a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, daily_charge, active)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.DailyCharge,
		driver.Active,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT id, name, phone, daily_charge, active FROM drivers WHERE id = $1`

	var d domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &d.Phone, &d.DailyCharge, &d.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &d, nil
}

// List retrieves all drivers.
func (r *DriverRepository) List(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT id, name, phone, daily_charge, active FROM drivers ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.DailyCharge, &d.Active); err != nil {
			return nil, err
		}
		drivers = append(drivers, &d)
	}

	return drivers, rows.Err()
}

// CustomerRepository is a PostgreSQL implementation of repository.CustomerRepository.
type CustomerRepository struct {
	q Querier
}

// NewCustomerRepository creates a new PostgreSQL customer repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{q: db}
}

// Create persists a new customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `INSERT INTO customers (id, name, phone) VALUES ($1, $2, $3)`

	_, err := r.q.ExecContext(ctx, query, customer.ID, customer.Name, customer.Phone)
	return err
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.get(ctx, `SELECT id, name, phone FROM customers WHERE id = $1`, id)
}

// GetByPhone retrieves a customer by phone number.
func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.get(ctx, `SELECT id, name, phone FROM customers WHERE phone = $1`, phone)
}

func (r *CustomerRepository) get(ctx context.Context, query, arg string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.q.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &c, nil
}

// Ensure implementations satisfy their interfaces.
var (
	_ repository.DriverRepository   = (*DriverRepository)(nil)
	_ repository.CustomerRepository = (*CustomerRepository)(nil)
)
