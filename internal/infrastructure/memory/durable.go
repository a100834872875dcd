// Package memory keeps durable client storage slots in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/helios/session-gateway/internal/core/ports"
)

// DurableStore holds one slot per device.
type DurableStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewDurableStore() *DurableStore {
	return &DurableStore{slots: make(map[string][]byte)}
}

// Slot returns the storage slot of deviceID.
func (s *DurableStore) Slot(deviceID string) ports.DurableStore {
	return &slot{store: s, device: deviceID}
}

type slot struct {
	store  *DurableStore
	device string
}

func (s *slot) Load(context.Context) ([]byte, bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	b, ok := s.store.slots[s.device]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (s *slot) Save(_ context.Context, data []byte) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.slots[s.device] = append([]byte(nil), data...)
	return nil
}

func (s *slot) Remove(context.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.slots, s.device)
	return nil
}
