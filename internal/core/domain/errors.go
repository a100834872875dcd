package domain

import "errors"

var (
	ErrNoCurrentUser      = errors.New("no user is logged in")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid onboarding status")
	ErrMalformedSession   = errors.New("malformed session record")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrDuplicateRequest   = errors.New("request already in flight")
)
