// Package guard decides, per navigation, whether a page request is allowed or
// must be redirected, based only on the path and the session cookie.
package guard

import (
	"strings"

	"github.com/helios/session-gateway/internal/core/domain"
)

const (
	PathLanding    = "/"
	PathLogin      = "/login"
	PathSignup     = "/signup"
	PathOnboarding = "/onboarding"
	PathDashboard  = "/dashboard"
)

var (
	protectedPrefixes  = []string{"/dashboard", "/jobs", "/applications", "/profile", "/company", "/search"}
	authPrefixes       = []string{PathLogin, PathSignup}
	onboardingPrefixes = []string{PathOnboarding}
)

// Class is the result of classifying a path against the route table. The
// three tests are independent, so more than one flag may be set.
type Class struct {
	Protected  bool
	Auth       bool
	Onboarding bool
}

// Classify matches path against the route table by prefix.
func Classify(path string) Class {
	return Class{
		Protected:  hasAnyPrefix(path, protectedPrefixes),
		Auth:       hasAnyPrefix(path, authPrefixes),
		Onboarding: hasAnyPrefix(path, onboardingPrefixes),
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Decision is the outcome of Evaluate. Target is set only when Allow is false.
type Decision struct {
	Allow  bool
	Target string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(target string) Decision { return Decision{Target: target} }

// Parser decodes a session cookie value.
type Parser interface {
	Decode(value string) (domain.User, error)
}

// Guard evaluates the redirect policy. It never mutates session state.
type Guard struct {
	parser Parser
}

func New(parser Parser) *Guard {
	return &Guard{parser: parser}
}

// Evaluate applies the policy, in order:
//  1. onboarding path with a cookie: allow, even if onboarding is complete.
//  2. protected path without a cookie: redirect to /login.
//  3. auth path with a cookie: redirect to /onboarding unless the cookie
//     parses with status completed, then /dashboard. A cookie that fails to
//     parse also goes to /dashboard.
//  4. otherwise allow.
func (g *Guard) Evaluate(path, cookie string, present bool) Decision {
	class := Classify(path)

	if class.Onboarding && present {
		return allow()
	}
	if class.Protected && !present {
		return redirect(PathLogin)
	}
	if class.Auth && present {
		u, err := g.parser.Decode(cookie)
		if err != nil {
			return redirect(PathDashboard)
		}
		if u.OnboardingStatus != domain.OnboardingCompleted {
			return redirect(PathOnboarding)
		}
		return redirect(PathDashboard)
	}
	return allow()
}
