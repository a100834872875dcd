// Package session holds the client's current user and keeps it mirrored in
// memory, in durable storage and in the cookie read by the route guard.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/guard"
	"github.com/helios/session-gateway/internal/core/ports"
	"github.com/helios/session-gateway/internal/core/sessioncookie"
)

// CookieEncoder produces the cookie value mirroring a user.
type CookieEncoder interface {
	Encode(u domain.User) (string, error)
	TTL() time.Duration
}

// Deps are the collaborators of a Store. Navigator and Events may be nil.
type Deps struct {
	Durable     ports.DurableStore
	Cookies     ports.CookieJar
	Codec       CookieEncoder
	Backend     ports.Backend
	Credentials ports.CredentialVerifier
	IDs         ports.IDGenerator
	Navigator   ports.Navigator
	Events      ports.EventPublisher
	DeviceID    string
	Log         zerolog.Logger
}

// Store is the single source of truth for who is logged in. One Store serves
// one client session; callers create it, call Initialize once, and keep it
// for the life of that session.
type Store struct {
	d Deps

	mu          sync.RWMutex
	user        *domain.User
	initialized bool
	inflight    int
}

func New(d Deps) *Store {
	return &Store{d: d}
}

// Initialize loads a previously stored user, if any, and rewrites the cookie
// from it so a cookie cleared on its own is restored. Missing or unreadable
// data leaves the session logged out and expires any session cookie the
// client still sends, so the route guard and the pages agree on who is
// logged in.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.initialized = true }()

	data, ok, err := s.d.Durable.Load(ctx)
	if err != nil {
		s.d.Log.Warn().Err(err).Str("device_id", s.d.DeviceID).Msg("load stored session failed")
		return
	}
	if !ok {
		s.dropOrphanCookie()
		return
	}

	u, err := sessioncookie.UnmarshalRecord(data)
	if err != nil {
		s.d.Log.Warn().Err(err).Str("device_id", s.d.DeviceID).Msg("stored session unreadable")
		s.dropOrphanCookie()
		return
	}

	value, err := s.d.Codec.Encode(u)
	if err != nil {
		s.d.Log.Error().Err(err).Str("user_id", u.ID).Msg("encode session cookie failed")
		return
	}
	s.user = &u
	s.d.Cookies.Set(sessioncookie.Name, value, s.d.Codec.TTL())
}

// Current returns a copy of the current user (nil when logged out) and
// whether the session is still loading.
func (s *Store) Current() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loading := !s.initialized || s.inflight > 0
	if s.user == nil {
		return nil, loading
	}
	u := s.user.Clone()
	return &u, loading
}

// Signup creates a new user that has not started onboarding and sends the
// client to the onboarding flow. The password is handed to the credential
// verifier only.
func (s *Store) Signup(ctx context.Context, email, password, name string, role domain.Role) (domain.User, error) {
	done := s.begin()
	defer done()

	if !role.IsValid() {
		return domain.User{}, domain.ErrInvalidRole
	}

	u, err := s.signup(ctx, email, password, name, role)
	if err != nil {
		s.d.Log.Error().Err(err).Str("email", email).Msg("signup failed")
		return domain.User{}, err
	}

	s.publish(domain.EventSignup, u)
	s.navigate(guard.PathOnboarding)
	return u, nil
}

func (s *Store) signup(ctx context.Context, email, password, name string, role domain.Role) (domain.User, error) {
	if err := s.d.Backend.Call(ctx, "signup"); err != nil {
		return domain.User{}, err
	}
	if err := s.d.Credentials.Register(ctx, email, password, name, role); err != nil {
		return domain.User{}, fmt.Errorf("register credentials: %w", err)
	}

	id, err := s.d.IDs.NewUserID()
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:               id,
		Email:            email,
		Name:             name,
		Role:             role,
		OnboardingStatus: domain.OnboardingNotStarted,
		ProfileData:      domain.ProfileData{},
	}
	if err := s.commit(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login replaces the current user with the identity behind email. The user
// always starts at not_started, so every login lands on onboarding.
func (s *Store) Login(ctx context.Context, email, password string) (domain.User, error) {
	done := s.begin()
	defer done()

	u, err := s.login(ctx, email, password)
	if err != nil {
		s.d.Log.Error().Err(err).Str("email", email).Msg("login failed")
		return domain.User{}, err
	}

	s.publish(domain.EventLogin, u)
	if u.OnboardingStatus == domain.OnboardingCompleted {
		s.navigate(guard.PathDashboard)
	} else {
		s.navigate(guard.PathOnboarding)
	}
	return u, nil
}

func (s *Store) login(ctx context.Context, email, password string) (domain.User, error) {
	if err := s.d.Backend.Call(ctx, "login"); err != nil {
		return domain.User{}, err
	}

	ident, err := s.d.Credentials.Verify(ctx, email, password)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify credentials: %w", err)
	}

	id, err := s.d.IDs.NewUserID()
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:               id,
		Email:            ident.Email,
		Name:             ident.Name,
		Role:             ident.Role,
		OnboardingStatus: domain.OnboardingNotStarted,
		ProfileData:      domain.ProfileData{},
	}
	if err := s.commit(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Logout clears durable storage, memory and the cookie, then sends the client
// to the landing page. Logging out twice is harmless. If durable storage
// cannot be cleared the session stays intact and the error is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.user
	if err := s.d.Durable.Remove(ctx); err != nil {
		s.mu.Unlock()
		s.d.Log.Error().Err(err).Str("device_id", s.d.DeviceID).Msg("remove stored session failed")
		return fmt.Errorf("logout: %w", err)
	}
	s.user = nil
	s.d.Cookies.Clear(sessioncookie.Name)
	s.mu.Unlock()

	if prev != nil {
		s.publish(domain.EventLogout, *prev)
	}
	s.navigate(guard.PathLanding)
	return nil
}

// UpdateUser shallow-merges patch into the current user and persists the
// result. With nobody logged in nothing is written and ErrNoCurrentUser is
// returned.
func (s *Store) UpdateUser(ctx context.Context, patch domain.UserPatch) (domain.User, error) {
	u, err := s.update(ctx, patch)
	if err != nil {
		return domain.User{}, err
	}
	s.publish(domain.EventUpdate, u)
	return u, nil
}

func (s *Store) update(ctx context.Context, patch domain.UserPatch) (domain.User, error) {
	if err := patch.Validate(); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		s.d.Log.Debug().Str("device_id", s.d.DeviceID).Msg("update ignored: no current user")
		return domain.User{}, domain.ErrNoCurrentUser
	}

	merged := s.user.Merge(patch)
	if err := s.commitLocked(ctx, merged); err != nil {
		s.d.Log.Error().Err(err).Str("user_id", merged.ID).Msg("update user failed")
		return domain.User{}, err
	}
	return merged.Clone(), nil
}

// CompleteOnboarding submits the onboarding answers, marks onboarding as
// completed and sends the client to the dashboard.
func (s *Store) CompleteOnboarding(ctx context.Context, profile domain.ProfileData) (domain.User, error) {
	done := s.begin()
	defer done()

	if err := s.d.Backend.Call(ctx, "complete onboarding"); err != nil {
		s.d.Log.Error().Err(err).Str("device_id", s.d.DeviceID).Msg("complete onboarding failed")
		return domain.User{}, err
	}

	status := domain.OnboardingCompleted
	if profile == nil {
		profile = domain.ProfileData{}
	}
	u, err := s.update(ctx, domain.UserPatch{OnboardingStatus: &status, ProfileData: profile})
	if err != nil {
		return domain.User{}, err
	}

	s.publish(domain.EventOnboardingCompleted, u)
	s.navigate(guard.PathDashboard)
	return u, nil
}

func (s *Store) commit(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx, u)
}

// commitLocked writes u to memory, then durable storage, then the cookie.
// Both serialized forms are prepared first; if the durable write fails the
// in-memory value is restored and the cookie is left untouched.
func (s *Store) commitLocked(ctx context.Context, u domain.User) error {
	data, err := sessioncookie.MarshalRecord(u)
	if err != nil {
		return err
	}
	value, err := s.d.Codec.Encode(u)
	if err != nil {
		return err
	}

	prev := s.user
	next := u.Clone()
	s.user = &next

	if err := s.d.Durable.Save(ctx, data); err != nil {
		s.user = prev
		return fmt.Errorf("save session: %w", err)
	}

	s.d.Cookies.Set(sessioncookie.Name, value, s.d.Codec.TTL())
	return nil
}

// dropOrphanCookie expires a session cookie that has no stored user behind
// it. Callers hold s.mu.
func (s *Store) dropOrphanCookie() {
	if _, ok := s.d.Cookies.Get(sessioncookie.Name); !ok {
		return
	}
	s.d.Cookies.Clear(sessioncookie.Name)
	s.d.Log.Info().Str("device_id", s.d.DeviceID).Msg("expired session cookie without stored session")
}

func (s *Store) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

func (s *Store) navigate(path string) {
	if s.d.Navigator != nil {
		s.d.Navigator.Navigate(path)
	}
}

func (s *Store) publish(kind domain.SessionEventKind, u domain.User) {
	if s.d.Events == nil {
		return
	}
	s.d.Events.Publish(domain.SessionEvent{
		Kind:             kind,
		DeviceID:         s.d.DeviceID,
		UserID:           u.ID,
		Email:            u.Email,
		Role:             u.Role,
		OnboardingStatus: u.OnboardingStatus,
		At:               time.Now().UTC(),
	})
}
