package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/helios/session-gateway/internal/core/guard"
)

// PageHandler serves page navigations that got past the route guard. Member
// and onboarding pages repeat the redirect check against the session itself,
// which catches a cookie that decoded but no longer matches durable storage.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Show renders the page descriptor for the requested path.
//
// @Summary      Page navigation
// @Tags         pages
// @Produce      json
// @Param        path  path      string  true  "Page path"
// @Success      200   {object}  pageResponse
// @Success      302
// @Router       /{path} [get]
func (h *PageHandler) Show(c echo.Context) error {
	store, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	path := c.Request().URL.Path
	u, loading := store.Current()

	class := guard.Classify(path)
	var (
		target string
		ok     bool
	)
	switch {
	case class.Onboarding:
		target, ok = guard.PageRedirect(u, loading, guard.PageOnboarding)
	case class.Protected:
		target, ok = guard.PageRedirect(u, loading, guard.PageMember)
	}
	if ok && target != path {
		return c.Redirect(http.StatusFound, target)
	}

	return c.JSON(http.StatusOK, pageResponse{Path: path, User: u})
}
