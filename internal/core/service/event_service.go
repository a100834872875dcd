package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/ports"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewEventService returns an EventService that appends to the activity log.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, log: log, now: time.Now}
}

// Record persists one session event. Events without a kind are rejected.
func (s *eventService) Record(ctx context.Context, ev domain.SessionEvent) error {
	if ev.Kind == "" {
		return fmt.Errorf("record session event: missing kind")
	}
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &ev); err != nil {
		return fmt.Errorf("record session event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(ev.Kind)).
		Str("user_id", ev.UserID).
		Str("device_id", ev.DeviceID).
		Msg("session event recorded")

	return nil
}
