package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/helios/session-gateway/docs"
	"github.com/helios/session-gateway/internal/api/handler"
	"github.com/helios/session-gateway/internal/api/middleware"
	"github.com/helios/session-gateway/internal/core/guard"
)

// RouterDeps are the already-wired collaborators the HTTP layer needs.
type RouterDeps struct {
	Open          middleware.Opener
	Guard         *guard.Guard
	Lock          handler.SubmissionLock
	Checks        map[string]handler.Check
	SecureCookies bool
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Device(d.SecureCookies))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.RouteGuard(d.Guard, middleware.GuardSkipper))

	// --- Probes, metrics, docs (no session) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	withSession := middleware.Session(d.Open, d.SecureCookies)

	// --- Session API ---
	sessions := handler.NewSessionHandler(d.Lock, d.Log)
	api := e.Group("/api/session", withSession)
	api.GET("", sessions.Current)
	api.POST("/signup", sessions.Signup)
	api.POST("/login", sessions.Login)
	api.POST("/logout", sessions.Logout)
	api.PATCH("", sessions.Update, middleware.RequireUser())
	api.POST("/onboarding", sessions.CompleteOnboarding, middleware.RequireUser())

	// --- Pages ---
	pages := handler.NewPageHandler()
	e.GET("/", pages.Show, withSession)
	e.GET("/*", pages.Show, withSession)

	return e
}
