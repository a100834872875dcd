package ports

import (
	"context"

	"github.com/helios/session-gateway/internal/core/domain"
)

// Identity is what a credential check yields about the account behind an email.
type Identity struct {
	Email string
	Name  string
	Role  domain.Role
}

// CredentialVerifier registers and checks account credentials.
type CredentialVerifier interface {
	Register(ctx context.Context, email, password, name string, role domain.Role) error
	Verify(ctx context.Context, email, password string) (Identity, error)
}

// Account is a stored credential record.
type Account struct {
	Email        string
	Name         string
	Role         domain.Role
	PasswordHash string
}

// AccountRepository persists credential records.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, account *Account) error
}
