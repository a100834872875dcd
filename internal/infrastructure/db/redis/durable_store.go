package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helios/session-gateway/internal/core/ports"
)

// DurableStore keeps durable client storage slots in Redis.
// Key format: device:<device_id>:<name>
type DurableStore struct {
	client redis.UniversalClient
	name   string
	ttl    time.Duration
}

// NewDurableStore stores each slot under name with the given expiry.
// A zero ttl keeps slots until they are removed.
func NewDurableStore(client redis.UniversalClient, name string, ttl time.Duration) *DurableStore {
	return &DurableStore{client: client, name: name, ttl: ttl}
}

// Slot returns the storage slot of deviceID.
func (s *DurableStore) Slot(deviceID string) ports.DurableStore {
	return &slot{store: s, key: s.key(deviceID)}
}

func (s *DurableStore) key(deviceID string) string {
	return fmt.Sprintf("device:%s:%s", deviceID, s.name)
}

type slot struct {
	store *DurableStore
	key   string
}

func (s *slot) Load(ctx context.Context) ([]byte, bool, error) {
	b, err := s.store.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load slot: %w", err)
	}
	return b, true, nil
}

func (s *slot) Save(ctx context.Context, data []byte) error {
	if err := s.store.client.Set(ctx, s.key, data, s.store.ttl).Err(); err != nil {
		return fmt.Errorf("save slot: %w", err)
	}
	return nil
}

func (s *slot) Remove(ctx context.Context) error {
	if err := s.store.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("remove slot: %w", err)
	}
	return nil
}
