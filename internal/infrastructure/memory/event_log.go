package memory

import (
	"context"
	"sync"

	"github.com/helios/session-gateway/internal/core/domain"
)

const defaultEventLogSize = 1024

// EventLog keeps the most recent session events in memory. It backs the
// activity log when no MongoDB is configured.
type EventLog struct {
	mu     sync.Mutex
	max    int
	events []domain.SessionEvent
}

func NewEventLog(max int) *EventLog {
	if max <= 0 {
		max = defaultEventLogSize
	}
	return &EventLog{max: max}
}

func (l *EventLog) InsertEvent(_ context.Context, event *domain.SessionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *event)
	if over := len(l.events) - l.max; over > 0 {
		l.events = append(l.events[:0:0], l.events[over:]...)
	}
	return nil
}

// Events returns a copy of the retained events, oldest first.
func (l *EventLog) Events() []domain.SessionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.SessionEvent(nil), l.events...)
}
