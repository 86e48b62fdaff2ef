package redis

import (
	"context"
	"time"
)

// Locker defines the interface for distributed per-key locking.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	AcquireWait(ctx context.Context, key string, ttl, wait time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// VehicleCacheInterface defines the interface for vehicle caching.
type VehicleCacheInterface interface {
	GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error)
	SetVehicle(ctx context.Context, vehicle *CachedVehicle) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ Locker                = (*LockStore)(nil)
	_ VehicleCacheInterface = (*CacheStore)(nil)
)
