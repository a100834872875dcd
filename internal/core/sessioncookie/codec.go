// Package sessioncookie defines the serialized form of the current user shared
// between the session store and the route guard.
//
// The record carries its own version so that changes to domain.User do not
// silently break readers of cookies or durable slots written by older code.
// Cookies hold the record inside an HS256 JWT; durable storage holds the bare
// JSON record.
package sessioncookie

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/helios/session-gateway/internal/core/domain"
)

const (
	// Name is the cookie and durable storage key.
	Name = "helios_user"
	// TTL is the cookie lifetime.
	TTL = 30 * 24 * time.Hour
	// Version is the record layout written by this package.
	Version = 1
)

type record struct {
	Version          int                     `json:"version"`
	ID               string                  `json:"id"`
	Email            string                  `json:"email"`
	Name             string                  `json:"name"`
	Role             domain.Role             `json:"role"`
	OnboardingStatus domain.OnboardingStatus `json:"onboardingStatus"`
	ProfileData      domain.ProfileData      `json:"profileData"`
}

type claims struct {
	Version int    `json:"ver"`
	User    record `json:"usr"`
	jwt.RegisteredClaims
}

func toRecord(u domain.User) record {
	pd := u.ProfileData
	if pd == nil {
		pd = domain.ProfileData{}
	}
	return record{
		Version:          Version,
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		OnboardingStatus: u.OnboardingStatus,
		ProfileData:      pd,
	}
}

func (r record) user() (domain.User, error) {
	// Records written before versioning have no version field.
	if r.Version != 0 && r.Version != Version {
		return domain.User{}, fmt.Errorf("%w: unsupported version %d", domain.ErrMalformedSession, r.Version)
	}
	if !r.OnboardingStatus.IsValid() {
		return domain.User{}, fmt.Errorf("%w: onboarding status %q", domain.ErrMalformedSession, r.OnboardingStatus)
	}
	pd := r.ProfileData
	if pd == nil {
		pd = domain.ProfileData{}
	}
	return domain.User{
		ID:               r.ID,
		Email:            r.Email,
		Name:             r.Name,
		Role:             r.Role,
		OnboardingStatus: r.OnboardingStatus,
		ProfileData:      pd,
	}, nil
}

// MarshalRecord returns the durable storage form of u.
func MarshalRecord(u domain.User) ([]byte, error) {
	b, err := json.Marshal(toRecord(u))
	if err != nil {
		return nil, fmt.Errorf("marshal session record: %w", err)
	}
	return b, nil
}

// UnmarshalRecord parses a durable storage record.
func UnmarshalRecord(data []byte) (domain.User, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	return r.user()
}

// Codec signs and verifies cookie values.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret. A non-positive ttl means TTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = TTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports how long encoded values stay valid.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode returns the cookie value for u.
func (c *Codec) Encode(u domain.User) (string, error) {
	now := c.now()
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Version: Version,
		User:    toRecord(u),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	s, err := tkn.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return s, nil
}

// Decode verifies value and returns the user it carries. Every failure wraps
// domain.ErrMalformedSession.
func (c *Codec) Decode(value string) (domain.User, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(value, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedSession) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	if cl.Version != Version {
		return domain.User{}, fmt.Errorf("%w: unsupported cookie version %d", domain.ErrMalformedSession, cl.Version)
	}
	return cl.User.user()
}
