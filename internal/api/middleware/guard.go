package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/helios/session-gateway/internal/api/metrics"
	"github.com/helios/session-gateway/internal/core/guard"
	"github.com/helios/session-gateway/internal/core/sessioncookie"
)

// GuardSkipper skips API, probe, metrics and documentation paths; only page
// navigations are guarded.
func GuardSkipper(c echo.Context) bool {
	r := c.Request()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}
	p := r.URL.Path
	for _, prefix := range []string{"/api/", "/health", "/metrics", "/swagger/"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// RouteGuard evaluates the route guard on every page navigation and issues a
// redirect when it does not allow the request.
func RouteGuard(g *guard.Guard, skipper echomiddleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = GuardSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			// An empty value counts as no cookie.
			value, present := "", false
			if ck, err := c.Cookie(sessioncookie.Name); err == nil {
				value, present = ck.Value, ck.Value != ""
			}

			d := g.Evaluate(c.Request().URL.Path, value, present)
			if d.Allow {
				metrics.GuardDecisionsTotal.WithLabelValues("allow").Inc()
				return next(c)
			}

			metrics.GuardDecisionsTotal.WithLabelValues(d.Target).Inc()
			return c.Redirect(http.StatusFound, d.Target)
		}
	}
}
