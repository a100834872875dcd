package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/sessioncookie"
)

func cookieFor(t *testing.T, codec *sessioncookie.Codec, status domain.OnboardingStatus) string {
	t.Helper()
	v, err := codec.Encode(domain.User{ID: "user_1", Email: "a@b.com", Role: domain.RoleSalesRep, OnboardingStatus: status})
	if err != nil {
		t.Fatalf("encode cookie: %v", err)
	}
	return v
}

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Class
	}{
		{"/", Class{}},
		{"/dashboard", Class{Protected: true}},
		{"/jobs/42", Class{Protected: true}},
		{"/applications/pipeline", Class{Protected: true}},
		{"/profile", Class{Protected: true}},
		{"/company/settings", Class{Protected: true}},
		{"/search", Class{Protected: true}},
		{"/login", Class{Auth: true}},
		{"/signup", Class{Auth: true}},
		{"/onboarding", Class{Onboarding: true}},
		{"/onboarding/step-2", Class{Onboarding: true}},
		{"/about", Class{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.path), tc.path)
	}
}

func TestEvaluate_OnboardingWithAnyCookieAllows(t *testing.T) {
	codec := sessioncookie.NewCodec("secret", 0)
	g := New(codec)

	for _, cookie := range []string{
		cookieFor(t, codec, domain.OnboardingNotStarted),
		cookieFor(t, codec, domain.OnboardingCompleted),
		"garbage",
		"",
	} {
		assert.Equal(t, Decision{Allow: true}, g.Evaluate("/onboarding", cookie, true))
	}
}

func TestEvaluate_OnboardingWithoutCookieAllows(t *testing.T) {
	g := New(sessioncookie.NewCodec("secret", 0))
	assert.Equal(t, Decision{Allow: true}, g.Evaluate("/onboarding", "", false))
}

func TestEvaluate_ProtectedWithoutCookieRedirectsToLogin(t *testing.T) {
	g := New(sessioncookie.NewCodec("secret", 0))

	for _, p := range protectedPrefixes {
		assert.Equal(t, Decision{Target: "/login"}, g.Evaluate(p, "", false), p)
		assert.Equal(t, Decision{Target: "/login"}, g.Evaluate(p+"/sub", "", false), p)
	}
}

func TestEvaluate_ProtectedWithCookieAllows(t *testing.T) {
	g := New(sessioncookie.NewCodec("secret", 0))
	// Presence alone is enough; the cookie is not parsed here.
	assert.Equal(t, Decision{Allow: true}, g.Evaluate("/dashboard", "garbage", true))
}

func TestEvaluate_AuthRoutes(t *testing.T) {
	codec := sessioncookie.NewCodec("secret", 0)
	g := New(codec)

	cases := []struct {
		name   string
		cookie string
		want   string
	}{
		{"completed", cookieFor(t, codec, domain.OnboardingCompleted), "/dashboard"},
		{"not started", cookieFor(t, codec, domain.OnboardingNotStarted), "/onboarding"},
		{"in progress", cookieFor(t, codec, domain.OnboardingInProgress), "/onboarding"},
		{"malformed", "{not-a-token", "/dashboard"},
		{"wrong secret", cookieFor(t, sessioncookie.NewCodec("other", 0), domain.OnboardingNotStarted), "/dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, p := range []string{"/login", "/signup"} {
				assert.Equal(t, Decision{Target: tc.want}, g.Evaluate(p, tc.cookie, true))
			}
		})
	}
}

func TestEvaluate_AuthWithoutCookieAllows(t *testing.T) {
	g := New(sessioncookie.NewCodec("secret", 0))
	assert.Equal(t, Decision{Allow: true}, g.Evaluate("/login", "", false))
}

func TestEvaluate_PublicPathsAllow(t *testing.T) {
	g := New(sessioncookie.NewCodec("secret", 0))
	assert.Equal(t, Decision{Allow: true}, g.Evaluate("/", "", false))
	assert.Equal(t, Decision{Allow: true}, g.Evaluate("/", "anything", true))
}

func TestPageRedirect(t *testing.T) {
	done := &domain.User{OnboardingStatus: domain.OnboardingCompleted}
	fresh := &domain.User{OnboardingStatus: domain.OnboardingNotStarted}

	cases := []struct {
		name    string
		user    *domain.User
		loading bool
		page    Page
		target  string
		ok      bool
	}{
		{"loading", nil, true, PageMember, "", false},
		{"member logged out", nil, false, PageMember, "/login", true},
		{"member not onboarded", fresh, false, PageMember, "/onboarding", true},
		{"member ok", done, false, PageMember, "", false},
		{"onboarding logged out", nil, false, PageOnboarding, "/login", true},
		{"onboarding completed", done, false, PageOnboarding, "/dashboard", true},
		{"onboarding ok", fresh, false, PageOnboarding, "", false},
	}
	for _, tc := range cases {
		target, ok := PageRedirect(tc.user, tc.loading, tc.page)
		assert.Equal(t, tc.target, target, tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
	}
}
