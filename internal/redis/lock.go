package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock TTLs. The TTL bounds how long a crashed holder can block others.
const (
	TripLockTTL    = 10 * time.Second
	BookingLockTTL = 15 * time.Second
)

// TripLockKey is the lock key serializing mutations of a single trip.
func TripLockKey(tripID string) string {
	return "lock:trip:" + tripID
}

// BookingLockKey is the lock key serializing trip creation per vehicle,
// so two concurrent create requests cannot double-book the same vehicle.
func BookingLockKey(vehicleID string) string {
	return "lock:booking:" + vehicleID
}

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// Acquire attempts to take the lock once. Returns true if the lock was
// acquired, false if already held.
func (s *LockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}

// AcquireWait retries acquisition until it succeeds, the wait budget is
// spent, or the context is cancelled. Returns false when the budget ran
// out with the lock still held elsewhere.
func (s *LockStore) AcquireWait(ctx context.Context, key string, ttl, wait time.Duration) (bool, error) {
	const retryInterval = 50 * time.Millisecond

	deadline := time.Now().Add(wait)
	for {
		ok, err := s.Acquire(ctx, key, ttl)
		if err != nil || ok {
			return ok, err
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release releases the lock.
func (s *LockStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
