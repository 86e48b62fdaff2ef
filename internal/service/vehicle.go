package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentalops/internal/domain"
	"rentalops/internal/redis"
	"rentalops/internal/repository"
)

// VehicleService handles fleet catalog operations, keeping the Redis
// vehicle cache warm alongside the database.
type VehicleService struct {
	cacheStore  *redis.CacheStore
	vehicleRepo repository.VehicleRepository
}

// NewVehicleService creates a new VehicleService. cacheStore may be nil.
func NewVehicleService(cacheStore *redis.CacheStore, vehicleRepo repository.VehicleRepository) *VehicleService {
	return &VehicleService{
		cacheStore:  cacheStore,
		vehicleRepo: vehicleRepo,
	}
}

// RegisterVehicleRequest contains the parameters for adding a vehicle.
type RegisterVehicleRequest struct {
	Plate          string
	Model          string
	Meter          int64
	DailyRate      decimal.Decimal
	FuelEfficiency decimal.Decimal
}

// RegisterVehicle adds a vehicle to the fleet, immediately available.
func (s *VehicleService) RegisterVehicle(ctx context.Context, req RegisterVehicleRequest) (*domain.Vehicle, error) {
	if req.Plate == "" {
		return nil, ErrInvalidVehicleID
	}
	if req.Meter < 0 {
		return nil, ErrInvalidMeter
	}

	vehicle := &domain.Vehicle{
		ID:             uuid.New().String(),
		Plate:          req.Plate,
		Model:          req.Model,
		Meter:          req.Meter,
		DailyRate:      req.DailyRate,
		FuelEfficiency: req.FuelEfficiency,
		Available:      true,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.AddAvailableVehicle(ctx, vehicle.ID)
		_ = s.cacheStore.SetVehicle(ctx, &redis.CachedVehicle{
			ID:        vehicle.ID,
			Plate:     vehicle.Plate,
			Model:     vehicle.Model,
			Meter:     vehicle.Meter,
			Available: vehicle.Available,
		})
	}

	return vehicle, nil
}

// GetVehicle retrieves a vehicle and refreshes its cache entry.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetVehicle(ctx, &redis.CachedVehicle{
			ID:        vehicle.ID,
			Plate:     vehicle.Plate,
			Model:     vehicle.Model,
			Meter:     vehicle.Meter,
			Available: vehicle.Available,
		})
	}

	return vehicle, nil
}

// ListVehicles retrieves the whole fleet.
func (s *VehicleService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.List(ctx)
}

// SetAvailability marks a vehicle in or out of service, for maintenance
// holds outside the trip lifecycle.
func (s *VehicleService) SetAvailability(ctx context.Context, vehicleID string, available bool) error {
	if vehicleID == "" {
		return ErrInvalidVehicleID
	}

	if err := s.vehicleRepo.UpdateAvailability(ctx, vehicleID, available); err != nil {
		return err
	}

	if s.cacheStore != nil {
		if available {
			_ = s.cacheStore.AddAvailableVehicle(ctx, vehicleID)
		} else {
			_ = s.cacheStore.RemoveAvailableVehicle(ctx, vehicleID)
		}
		_ = s.cacheStore.InvalidateVehicle(ctx, vehicleID)
	}

	return nil
}
