package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/core/ports"
)

// SlotProvider hands out the durable storage slot of a device.
type SlotProvider interface {
	Slot(deviceID string) ports.DurableStore
}

// Factory opens Stores that share every collaborator except the device's
// storage slot, cookie jar and navigator.
type Factory struct {
	Slots       SlotProvider
	Codec       CookieEncoder
	Backend     ports.Backend
	Credentials ports.CredentialVerifier
	IDs         ports.IDGenerator
	Events      ports.EventPublisher
	Log         zerolog.Logger
}

// Open returns an initialized Store for deviceID.
func (f *Factory) Open(ctx context.Context, deviceID string, jar ports.CookieJar, nav ports.Navigator) *Store {
	s := New(Deps{
		Durable:     f.Slots.Slot(deviceID),
		Cookies:     jar,
		Codec:       f.Codec,
		Backend:     f.Backend,
		Credentials: f.Credentials,
		IDs:         f.IDs,
		Navigator:   nav,
		Events:      f.Events,
		DeviceID:    deviceID,
		Log:         f.Log.With().Str("device_id", deviceID).Logger(),
	})
	s.Initialize(ctx)
	return s
}
