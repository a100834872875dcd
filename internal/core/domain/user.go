package domain

import (
	"encoding/json"
	"maps"
)

// Role selects which dashboard and onboarding variant a user sees.
type Role string

const (
	RoleSalesRep      Role = "sales_rep"
	RoleBusinessOwner Role = "business_owner"
	RoleNone          Role = ""
)

// IsValid reports whether r is one of the known roles. RoleNone is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleSalesRep, RoleBusinessOwner, RoleNone:
		return true
	}
	return false
}

// MarshalJSON renders RoleNone as null, the representation the web client expects.
func (r Role) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Role) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = RoleNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	role := Role(s)
	if !role.IsValid() {
		return ErrInvalidRole
	}
	*r = role
	return nil
}

// OnboardingStatus drives the route guard's redirect decisions.
type OnboardingStatus string

const (
	OnboardingNotStarted OnboardingStatus = "not_started"
	OnboardingInProgress OnboardingStatus = "in_progress"
	OnboardingCompleted  OnboardingStatus = "completed"
)

func (s OnboardingStatus) IsValid() bool {
	switch s {
	case OnboardingNotStarted, OnboardingInProgress, OnboardingCompleted:
		return true
	}
	return false
}

// ProfileData is populated wholesale by the onboarding flow. Its contents are
// opaque to the session layer.
type ProfileData map[string]any

// User is the current session's identity and onboarding progress.
type User struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	Role             Role             `json:"role"`
	OnboardingStatus OnboardingStatus `json:"onboardingStatus"`
	ProfileData      ProfileData      `json:"profileData"`
}

// Clone returns a copy that shares no top-level map with u.
func (u User) Clone() User {
	out := u
	if u.ProfileData != nil {
		out.ProfileData = maps.Clone(u.ProfileData)
	}
	return out
}

// UserPatch carries the fields an update may replace. Nil fields are left alone.
type UserPatch struct {
	Name             *string
	OnboardingStatus *OnboardingStatus
	ProfileData      ProfileData
}

// Merge applies p on top of u. The merge is shallow: a non-nil ProfileData
// replaces the previous map entirely.
func (u User) Merge(p UserPatch) User {
	out := u.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.OnboardingStatus != nil {
		out.OnboardingStatus = *p.OnboardingStatus
	}
	if p.ProfileData != nil {
		out.ProfileData = maps.Clone(p.ProfileData)
	}
	return out
}

// Validate checks the patch before it is merged.
func (p UserPatch) Validate() error {
	if p.OnboardingStatus != nil && !p.OnboardingStatus.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
