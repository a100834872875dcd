package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/ports"
)

const eventCollection = "session_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{db: db}
}

// InsertEvent appends a session event to the session_events collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.SessionEvent) error {
	doc := bson.M{
		"kind":              string(event.Kind),
		"device_id":         event.DeviceID,
		"user_id":           event.UserID,
		"email":             event.Email,
		"role":              string(event.Role),
		"onboarding_status": string(event.OnboardingStatus),
		"at":                event.At.UTC(),
		"recorded_at":       time.Now().UTC(),
	}

	_, err := r.db.Collection(eventCollection).InsertOne(ctx, doc)
	return err
}
