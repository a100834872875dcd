package domain

import "time"

// SessionEventKind names the session mutation that produced an event.
type SessionEventKind string

const (
	EventSignup              SessionEventKind = "signup"
	EventLogin               SessionEventKind = "login"
	EventLogout              SessionEventKind = "logout"
	EventUpdate              SessionEventKind = "update"
	EventOnboardingCompleted SessionEventKind = "onboarding_completed"
)

// SessionEvent is an entry in the session activity log.
type SessionEvent struct {
	Kind             SessionEventKind
	DeviceID         string
	UserID           string
	Email            string
	Role             Role
	OnboardingStatus OnboardingStatus
	At               time.Time
}
