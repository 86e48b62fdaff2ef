package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleCacheTTL bounds staleness of cached vehicle rows. Availability
// flips on start/end/cancel, so the window is kept short.
const VehicleCacheTTL = 30 * time.Second

const (
	vehicleCachePrefix  = "cache:vehicle:"
	availableVehicleSet = "available_vehicles"
)

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID        string `json:"id"`
	Plate     string `json:"plate"`
	Model     string `json:"model"`
	Meter     int64  `json:"meter"`
	Available bool   `json:"available"`
}

// GetVehicle retrieves a vehicle from cache. Returns nil on a miss.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error) {
	data, err := s.client.Get(ctx, vehicleCachePrefix+vehicleID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var vehicle CachedVehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, vehicle *CachedVehicle) error {
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, vehicleCachePrefix+vehicle.ID, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle from cache.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	return s.client.Del(ctx, vehicleCachePrefix+vehicleID).Err()
}

// AddAvailableVehicle adds a vehicle to the fast availability set.
func (s *CacheStore) AddAvailableVehicle(ctx context.Context, vehicleID string) error {
	return s.client.SAdd(ctx, availableVehicleSet, vehicleID).Err()
}

// RemoveAvailableVehicle removes a vehicle from the availability set.
func (s *CacheStore) RemoveAvailableVehicle(ctx context.Context, vehicleID string) error {
	return s.client.SRem(ctx, availableVehicleSet, vehicleID).Err()
}

// GetAvailableVehicles returns all vehicle IDs currently marked available.
func (s *CacheStore) GetAvailableVehicles(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, availableVehicleSet).Result()
}
