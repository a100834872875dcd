package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	err    error
}

func (s *recordingService) Record(_ context.Context, ev domain.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingService) snapshot() []domain.SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SessionEvent(nil), s.events...)
}

func TestDispatcher_PreservesPerDeviceOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(3, svc, zerolog.Nop())

	kinds := []domain.SessionEventKind{domain.EventSignup, domain.EventUpdate, domain.EventOnboardingCompleted, domain.EventLogout}
	for _, k := range kinds {
		d.Publish(domain.SessionEvent{Kind: k, DeviceID: "device-a"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	got := svc.snapshot()
	if len(got) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(got))
	}
	for i, k := range kinds {
		if got[i].Kind != k {
			t.Fatalf("event %d: expected %s, got %s", i, k, got[i].Kind)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())
	first := d.shardIndex("device-xyz")
	for i := 0; i < 10; i++ {
		if d.shardIndex("device-xyz") != first {
			t.Fatalf("shard index changed between calls")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())

	for i := 0; i < channelBuffer+10; i++ {
		d.Publish(domain.SessionEvent{Kind: domain.EventUpdate, DeviceID: "d"})
	}
	if n := len(d.workers[0]); n != channelBuffer {
		t.Fatalf("expected full queue of %d, got %d", channelBuffer, n)
	}
}

func TestDispatcher_RecordErrorsDoNotStopWorker(t *testing.T) {
	svc := &recordingService{err: errors.New("mongo down")}
	d := NewDispatcher(1, svc, zerolog.Nop())

	d.Publish(domain.SessionEvent{Kind: domain.EventLogin, DeviceID: "d"})
	d.Publish(domain.SessionEvent{Kind: domain.EventLogout, DeviceID: "d"})

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	if got := len(svc.snapshot()); got != 2 {
		t.Fatalf("expected both events attempted, got %d", got)
	}
}
