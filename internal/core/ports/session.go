package ports

import (
	"context"

	"github.com/helios/session-gateway/internal/core/domain"
)

// SessionStore is the surface the presentation layer calls into.
type SessionStore interface {
	Current() (*domain.User, bool)
	Signup(ctx context.Context, email, password, name string, role domain.Role) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, patch domain.UserPatch) (domain.User, error)
	CompleteOnboarding(ctx context.Context, profile domain.ProfileData) (domain.User, error)
}
