package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helios/session-gateway/internal/api/middleware"
	"github.com/helios/session-gateway/internal/core/ports"
)

// ctxSession returns the session opened by the Session middleware. Its
// absence means the route was registered without that middleware.
func ctxSession(c echo.Context) (ports.SessionStore, *middleware.Navigation, error) {
	store, nav, ok := middleware.SessionFrom(c)
	if !ok {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "session not initialized")
	}
	return store, nav, nil
}
