package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRideLock attempts to acquire the approval lock for a ride.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:ride:%s", rideID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRideLock releases the approval lock for a ride.
func (s *LockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	key := fmt.Sprintf("lock:ride:%s", rideID)

	return s.client.Del(ctx, key).Err()
}

// AcquireOwnerLock attempts to acquire the start lock for an owner. Held
// while checking that the owner has no other ride in progress.
func (s *LockStore) AcquireOwnerLock(ctx context.Context, ownerID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:owner:%s", ownerID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseOwnerLock releases the start lock for an owner.
func (s *LockStore) ReleaseOwnerLock(ctx context.Context, ownerID string) error {
	key := fmt.Sprintf("lock:owner:%s", ownerID)

	return s.client.Del(ctx, key).Err()
}
