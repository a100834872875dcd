package ports

import (
	"context"

	"github.com/helios/session-gateway/internal/core/domain"
)

// EventRepository persists the session activity log.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.SessionEvent) error
}

// EventPublisher hands session events off for asynchronous recording.
type EventPublisher interface {
	Publish(event domain.SessionEvent)
}

// EventService records a single session event.
type EventService interface {
	Record(ctx context.Context, event domain.SessionEvent) error
}
