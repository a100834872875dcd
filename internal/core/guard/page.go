package guard

import "github.com/helios/session-gateway/internal/core/domain"

// Page identifies which page-level check a rendered page applies.
type Page int

const (
	// PageMember pages need a user who has finished onboarding.
	PageMember Page = iota
	// PageOnboarding needs a user who has not finished onboarding.
	PageOnboarding
)

// PageRedirect repeats, from the in-memory session, the subset of the guard
// policy a rendered page checks on its own. It returns ok=false while the
// session is still loading or when the page may render.
func PageRedirect(user *domain.User, loading bool, page Page) (target string, ok bool) {
	if loading {
		return "", false
	}
	if user == nil {
		return PathLogin, true
	}
	completed := user.OnboardingStatus == domain.OnboardingCompleted
	switch page {
	case PageMember:
		if !completed {
			return PathOnboarding, true
		}
	case PageOnboarding:
		if completed {
			return PathDashboard, true
		}
	}
	return "", false
}
