package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// SubmissionLock rejects a second signup or login from the same device while
// the first is still in flight.
// Key format: inflight:<device_id>:<operation>
type SubmissionLock struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSubmissionLock creates a SubmissionLock. Locks expire after ttl so a
// crashed request cannot block the device forever.
func NewSubmissionLock(client redis.UniversalClient, ttl time.Duration) *SubmissionLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &SubmissionLock{client: client, ttl: ttl}
}

// Acquire reports whether the lock was taken.
func (l *SubmissionLock) Acquire(ctx context.Context, deviceID, op string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(deviceID, op), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire submission lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock.
func (l *SubmissionLock) Release(ctx context.Context, deviceID, op string) error {
	return l.client.Del(ctx, l.key(deviceID, op)).Err()
}

func (l *SubmissionLock) key(deviceID, op string) string {
	return fmt.Sprintf("inflight:%s:%s", deviceID, op)
}
