package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/ports"
)

// PlaceholderVerifier accepts any credentials and infers the identity from the
// email address. It stands in until a real credential authority exists.
type PlaceholderVerifier struct{}

func NewPlaceholderVerifier() *PlaceholderVerifier {
	return &PlaceholderVerifier{}
}

// Register accepts the signup without storing the password.
func (PlaceholderVerifier) Register(context.Context, string, string, string, domain.Role) error {
	return nil
}

// Verify returns business_owner when the email contains "business" and
// sales_rep otherwise. The name is the part of the email before "@".
func (PlaceholderVerifier) Verify(_ context.Context, email, _ string) (ports.Identity, error) {
	role := domain.RoleSalesRep
	if strings.Contains(email, "business") {
		role = domain.RoleBusinessOwner
	}
	name, _, _ := strings.Cut(email, "@")
	return ports.Identity{Email: email, Name: name, Role: role}, nil
}

// AccountVerifier checks credentials against stored bcrypt hashes.
type AccountVerifier struct {
	repo ports.AccountRepository
	cost int
}

func NewAccountVerifier(repo ports.AccountRepository, cost int) *AccountVerifier {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &AccountVerifier{repo: repo, cost: cost}
}

func (v *AccountVerifier) Register(ctx context.Context, email, password, name string, role domain.Role) error {
	if email == "" || password == "" {
		return domain.ErrInvalidCredentials
	}
	if !role.IsValid() {
		return domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return err
	}

	return v.repo.Create(ctx, &ports.Account{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	})
}

func (v *AccountVerifier) Verify(ctx context.Context, email, password string) (ports.Identity, error) {
	if email == "" || password == "" {
		return ports.Identity{}, domain.ErrInvalidCredentials
	}

	acct, err := v.repo.FindByEmail(ctx, email)
	if err != nil {
		return ports.Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ports.Identity{}, domain.ErrInvalidCredentials
		}
		return ports.Identity{}, err
	}

	return ports.Identity{Email: acct.Email, Name: acct.Name, Role: acct.Role}, nil
}
