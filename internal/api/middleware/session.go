package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helios/session-gateway/internal/core/ports"
)

const (
	ctxSession    = "session"
	ctxNavigation = "navigation"
)

// Opener returns the initialized session of a device.
type Opener func(ctx context.Context, deviceID string, jar ports.CookieJar, nav ports.Navigator) ports.SessionStore

// Navigation records the last navigation a session operation asked for.
type Navigation struct {
	Target string
}

func (n *Navigation) Navigate(path string) { n.Target = path }

// Session opens the device's session for the request and stores it, with its
// navigation recorder, in the echo context. It must run after Device.
func Session(open Opener, secureCookies bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deviceID := DeviceID(c)
			if deviceID == "" {
				return echo.NewHTTPError(http.StatusInternalServerError, "missing device identity")
			}

			nav := &Navigation{}
			store := open(c.Request().Context(), deviceID, NewCookieJar(c, secureCookies), nav)

			c.Set(ctxSession, store)
			c.Set(ctxNavigation, nav)
			return next(c)
		}
	}
}

// SessionFrom returns the session and navigation recorder set by Session.
func SessionFrom(c echo.Context) (ports.SessionStore, *Navigation, bool) {
	store, ok := c.Get(ctxSession).(ports.SessionStore)
	if !ok {
		return nil, nil, false
	}
	nav, _ := c.Get(ctxNavigation).(*Navigation)
	if nav == nil {
		nav = &Navigation{}
	}
	return store, nav, true
}

// RequireUser rejects requests whose session has no current user.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store, _, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "session not initialized")
			}
			if u, _ := store.Current(); u == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not logged in"})
			}
			return next(c)
		}
	}
}
