package ports

import (
	"context"
	"time"
)

// DurableStore is the client's durable storage slot for the serialized user.
// Load reports ok=false when nothing is stored.
type DurableStore interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
	Remove(ctx context.Context) error
}

// CookieJar reads and writes the cookies visible to the route guard.
type CookieJar interface {
	Get(name string) (string, bool)
	Set(name, value string, maxAge time.Duration)
	Clear(name string)
}

// Navigator receives the client-side navigation requested by a session operation.
type Navigator interface {
	Navigate(path string)
}

// Backend is the network step a session operation waits on before mutating
// state. The current implementation only simulates latency.
type Backend interface {
	Call(ctx context.Context, op string) error
}

// IDGenerator produces identifiers for new users.
type IDGenerator interface {
	NewUserID() (string, error)
}
