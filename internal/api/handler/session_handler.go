package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/api/metrics"
	"github.com/helios/session-gateway/internal/api/middleware"
	"github.com/helios/session-gateway/internal/core/domain"
)

const (
	msgFieldsRequired = "All fields are required"
	msgSignupFailed   = "Failed to create account. Please try again."
	msgLoginFailed    = "Failed to log in. Please try again."
	msgUpdateFailed   = "Failed to update profile. Please try again."
)

// SubmissionLock guards against a second signup or login from one device
// while the first is in flight.
type SubmissionLock interface {
	Acquire(ctx context.Context, deviceID, op string) (bool, error)
	Release(ctx context.Context, deviceID, op string) error
}

// SessionHandler exposes the session store over HTTP.
type SessionHandler struct {
	lock SubmissionLock
	log  zerolog.Logger
}

func NewSessionHandler(lock SubmissionLock, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{lock: lock, log: log}
}

// Current returns the current user of the device's session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	store, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	u, loading := store.Current()
	return c.JSON(http.StatusOK, sessionResponse{User: u, Loading: loading})
}

// Signup creates an account and starts a session for it.
//
// @Summary      Sign up
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /api/session/signup [post]
func (h *SessionHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgFieldsRequired)
	}
	if req.Role == "" {
		req.Role = string(domain.RoleSalesRep)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	store, nav, err := ctxSession(c)
	if err != nil {
		return err
	}

	release, err := h.acquire(c, "signup")
	if err != nil {
		return err
	}
	defer release()

	u, err := store.Signup(c.Request().Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	observe("signup", err)
	if err != nil {
		return operationError(err, msgSignupFailed)
	}

	return c.JSON(http.StatusCreated, sessionResponse{User: &u, Redirect: nav.Target})
}

// Login starts a session for an existing account.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /api/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgFieldsRequired)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	store, nav, err := ctxSession(c)
	if err != nil {
		return err
	}

	release, err := h.acquire(c, "login")
	if err != nil {
		return err
	}
	defer release()

	u, err := store.Login(c.Request().Context(), req.Email, req.Password)
	observe("login", err)
	if err != nil {
		return operationError(err, msgLoginFailed)
	}

	return c.JSON(http.StatusOK, sessionResponse{User: &u, Redirect: nav.Target})
}

// Logout ends the session. Calling it without a session is not an error.
//
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	store, nav, err := ctxSession(c)
	if err != nil {
		return err
	}

	err = store.Logout(c.Request().Context())
	observe("logout", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Redirect: nav.Target})
}

// Update shallow-merges fields into the current user.
//
// @Summary      Update current user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      updateRequest  true  "Fields to replace"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /api/session [patch]
func (h *SessionHandler) Update(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	store, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	patch := domain.UserPatch{Name: req.Name, ProfileData: req.ProfileData}
	if req.OnboardingStatus != nil {
		status := domain.OnboardingStatus(*req.OnboardingStatus)
		patch.OnboardingStatus = &status
	}

	u, err := store.UpdateUser(c.Request().Context(), patch)
	observe("update", err)
	if err != nil {
		return operationError(err, msgUpdateFailed)
	}
	return c.JSON(http.StatusOK, sessionResponse{User: &u})
}

// CompleteOnboarding stores the onboarding answers and marks onboarding done.
//
// @Summary      Complete onboarding
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      onboardingRequest  true  "Profile data"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /api/session/onboarding [post]
func (h *SessionHandler) CompleteOnboarding(c echo.Context) error {
	var req onboardingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	store, nav, err := ctxSession(c)
	if err != nil {
		return err
	}

	u, err := store.CompleteOnboarding(c.Request().Context(), domain.ProfileData(req.ProfileData))
	observe("complete_onboarding", err)
	if err != nil {
		return operationError(err, msgUpdateFailed)
	}
	return c.JSON(http.StatusOK, sessionResponse{User: &u, Redirect: nav.Target})
}

// acquire takes the device's submission lock for op. A lock backend failure
// is logged and the request proceeds unguarded.
func (h *SessionHandler) acquire(c echo.Context, op string) (func(), error) {
	noop := func() {}
	if h.lock == nil {
		return noop, nil
	}

	deviceID := middleware.DeviceID(c)
	ctx := c.Request().Context()

	ok, err := h.lock.Acquire(ctx, deviceID, op)
	if err != nil {
		h.log.Warn().Err(err).Str("device_id", deviceID).Str("op", op).Msg("submission lock unavailable, proceeding")
		return noop, nil
	}
	if !ok {
		metrics.DuplicateSubmissionsTotal.WithLabelValues(op).Inc()
		return nil, domain.ErrDuplicateRequest
	}

	return func() {
		if err := h.lock.Release(context.WithoutCancel(ctx), deviceID, op); err != nil {
			h.log.Warn().Err(err).Str("device_id", deviceID).Str("op", op).Msg("release submission lock failed")
		}
	}, nil
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.SessionOperationsTotal.WithLabelValues(op, result).Inc()
}

// operationError passes known domain errors through to the error handler and
// replaces anything else with the operation's generic failure message.
func operationError(err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNoCurrentUser):
		return err
	case errors.Is(err, domain.ErrBackendUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, msg).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
	}
}
