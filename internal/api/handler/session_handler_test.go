package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/api/middleware"
	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/ports"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

type stubStore struct {
	user    *domain.User
	loading bool
	nav     ports.Navigator
	err     error

	gotRole  domain.Role
	gotPatch domain.UserPatch
	logouts  int
}

func (s *stubStore) Current() (*domain.User, bool) { return s.user, s.loading }

func (s *stubStore) Signup(_ context.Context, email, _, name string, role domain.Role) (domain.User, error) {
	s.gotRole = role
	if s.err != nil {
		return domain.User{}, s.err
	}
	u := domain.User{ID: "user_abc123def", Email: email, Name: name, Role: role, OnboardingStatus: domain.OnboardingNotStarted}
	s.user = &u
	s.nav.Navigate("/onboarding")
	return u, nil
}

func (s *stubStore) Login(_ context.Context, email, _ string) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	u := domain.User{ID: "user_abc123def", Email: email, Role: domain.RoleSalesRep, OnboardingStatus: domain.OnboardingNotStarted}
	s.user = &u
	s.nav.Navigate("/onboarding")
	return u, nil
}

func (s *stubStore) Logout(context.Context) error {
	s.logouts++
	s.user = nil
	s.nav.Navigate("/")
	return s.err
}

func (s *stubStore) UpdateUser(_ context.Context, p domain.UserPatch) (domain.User, error) {
	s.gotPatch = p
	if s.err != nil {
		return domain.User{}, s.err
	}
	u := s.user.Merge(p)
	s.user = &u
	return u, nil
}

func (s *stubStore) CompleteOnboarding(_ context.Context, profile domain.ProfileData) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	status := domain.OnboardingCompleted
	u := s.user.Merge(domain.UserPatch{OnboardingStatus: &status, ProfileData: profile})
	s.user = &u
	s.nav.Navigate("/dashboard")
	return u, nil
}

type stubLock struct {
	held     bool
	err      error
	released int
}

func (l *stubLock) Acquire(context.Context, string, string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *stubLock) Release(context.Context, string, string) error {
	l.released++
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

type route struct {
	method string
	path   string
	fn     func(h *SessionHandler) echo.HandlerFunc
}

func serve(t *testing.T, store *stubStore, lock SubmissionLock, r route, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{Error: he.Message.(string)})
			return
		}
		switch {
		case errors.Is(err, domain.ErrDuplicateRequest), errors.Is(err, domain.ErrUserExists):
			_ = c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrNoCurrentUser):
			_ = c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		default:
			_ = c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
	}

	open := func(_ context.Context, _ string, _ ports.CookieJar, nav ports.Navigator) ports.SessionStore {
		store.nav = nav
		return store
	}
	h := NewSessionHandler(lock, zerolog.Nop())
	e.Add(r.method, r.path, r.fn(h), middleware.Device(false), middleware.Session(open, false))

	req := httptest.NewRequest(r.method, r.path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var (
	signupRoute  = route{http.MethodPost, "/api/session/signup", func(h *SessionHandler) echo.HandlerFunc { return h.Signup }}
	loginRoute   = route{http.MethodPost, "/api/session/login", func(h *SessionHandler) echo.HandlerFunc { return h.Login }}
	logoutRoute  = route{http.MethodPost, "/api/session/logout", func(h *SessionHandler) echo.HandlerFunc { return h.Logout }}
	currentRoute = route{http.MethodGet, "/api/session", func(h *SessionHandler) echo.HandlerFunc { return h.Current }}
	updateRoute  = route{http.MethodPatch, "/api/session", func(h *SessionHandler) echo.HandlerFunc { return h.Update }}
	onboardRoute = route{http.MethodPost, "/api/session/onboarding", func(h *SessionHandler) echo.HandlerFunc { return h.CompleteOnboarding }}
)

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestSignup_Success(t *testing.T) {
	store := &stubStore{}
	rec := serve(t, store, &stubLock{}, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann","role":"business_owner"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSession(t, rec)
	if resp.User == nil || resp.User.Role != domain.RoleBusinessOwner {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if resp.Redirect != "/onboarding" {
		t.Fatalf("expected redirect to /onboarding, got %q", resp.Redirect)
	}
}

func TestSignup_DefaultsRoleToSalesRep(t *testing.T) {
	store := &stubStore{}
	rec := serve(t, store, nil, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if store.gotRole != domain.RoleSalesRep {
		t.Fatalf("expected sales_rep, got %q", store.gotRole)
	}
}

func TestSignup_MissingFields(t *testing.T) {
	rec := serve(t, &stubStore{}, nil, signupRoute, `{"email":"a@x.com","password":"","name":"Ann"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgFieldsRequired) {
		t.Fatalf("expected %q in body, got %s", msgFieldsRequired, rec.Body.String())
	}
}

func TestSignup_InvalidRole(t *testing.T) {
	rec := serve(t, &stubStore{}, nil, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann","role":"admin"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestSignup_DuplicateSubmission(t *testing.T) {
	store := &stubStore{}
	rec := serve(t, store, &stubLock{held: true}, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if store.user != nil {
		t.Fatalf("store should not be called while a submission is in flight")
	}
}

func TestSignup_LockFailureProceeds(t *testing.T) {
	rec := serve(t, &stubStore{}, &stubLock{err: errors.New("redis down")}, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSignup_ReleasesLock(t *testing.T) {
	lock := &stubLock{}
	serve(t, &stubStore{}, lock, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann"}`)

	if lock.released != 1 {
		t.Fatalf("expected lock released once, got %d", lock.released)
	}
}

func TestSignup_UnknownErrorIsGeneric(t *testing.T) {
	rec := serve(t, &stubStore{err: errors.New("disk full")}, nil, signupRoute, `{"email":"a@x.com","password":"p","name":"Ann"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgSignupFailed) {
		t.Fatalf("expected generic message, got %s", rec.Body.String())
	}
}

func TestLogin_Success(t *testing.T) {
	rec := serve(t, &stubStore{}, nil, loginRoute, `{"email":"a@x.com","password":"p"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeSession(t, rec)
	if resp.User == nil || resp.User.OnboardingStatus != domain.OnboardingNotStarted {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	rec := serve(t, &stubStore{err: domain.ErrInvalidCredentials}, nil, loginRoute, `{"email":"a@x.com","password":"p"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogin_BackendUnavailable(t *testing.T) {
	rec := serve(t, &stubStore{err: domain.ErrBackendUnavailable}, nil, loginRoute, `{"email":"a@x.com","password":"p"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgLoginFailed) {
		t.Fatalf("expected generic message, got %s", rec.Body.String())
	}
}

func TestLogout_WithoutSession(t *testing.T) {
	store := &stubStore{}
	rec := serve(t, store, nil, logoutRoute, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.logouts != 1 {
		t.Fatalf("expected logout called once, got %d", store.logouts)
	}
	if resp := decodeSession(t, rec); resp.Redirect != "/" || resp.User != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCurrent_ReportsLoading(t *testing.T) {
	rec := serve(t, &stubStore{loading: true}, nil, currentRoute, "")

	resp := decodeSession(t, rec)
	if !resp.Loading || resp.User != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUpdate_PassesPatch(t *testing.T) {
	store := &stubStore{user: &domain.User{ID: "u", Name: "Old", OnboardingStatus: domain.OnboardingNotStarted}}
	rec := serve(t, store, nil, updateRoute, `{"name":"New","onboardingStatus":"in_progress"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.gotPatch.Name == nil || *store.gotPatch.Name != "New" {
		t.Fatalf("name not passed: %+v", store.gotPatch)
	}
	if store.gotPatch.OnboardingStatus == nil || *store.gotPatch.OnboardingStatus != domain.OnboardingInProgress {
		t.Fatalf("status not passed: %+v", store.gotPatch)
	}
	if store.gotPatch.ProfileData != nil {
		t.Fatalf("absent profileData must stay nil")
	}
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	store := &stubStore{user: &domain.User{ID: "u"}}
	rec := serve(t, store, nil, updateRoute, `{"onboardingStatus":"done"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestUpdate_NoCurrentUser(t *testing.T) {
	rec := serve(t, &stubStore{err: domain.ErrNoCurrentUser}, nil, updateRoute, `{"name":"New"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCompleteOnboarding_RedirectsToDashboard(t *testing.T) {
	store := &stubStore{user: &domain.User{ID: "u", OnboardingStatus: domain.OnboardingInProgress}}
	rec := serve(t, store, nil, onboardRoute, `{"profileData":{"industry":"saas"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeSession(t, rec)
	if resp.Redirect != "/dashboard" || resp.User.OnboardingStatus != domain.OnboardingCompleted {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.User.ProfileData["industry"] != "saas" {
		t.Fatalf("profile data not stored: %+v", resp.User.ProfileData)
	}
}
