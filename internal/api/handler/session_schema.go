package handler

import "github.com/helios/session-gateway/internal/core/domain"

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=sales_rep business_owner"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateRequest struct {
	Name             *string        `json:"name"`
	OnboardingStatus *string        `json:"onboardingStatus" validate:"omitempty,oneof=not_started in_progress completed"`
	ProfileData      map[string]any `json:"profileData"`
}

type onboardingRequest struct {
	ProfileData map[string]any `json:"profileData"`
}

type sessionResponse struct {
	User     *domain.User `json:"user"`
	Loading  bool         `json:"loading"`
	Redirect string       `json:"redirect,omitempty"`
}

type pageResponse struct {
	Path     string       `json:"path"`
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect,omitempty"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}
