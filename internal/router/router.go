// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/handler"
	"github.com/skyreserve/airline-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// flight listing, search, details and the airport directory.  These
// routes apply no JWT or role middleware so guests can browse before
// creating an account.  The response cache and rate limiter are passed
// in here rather than installed globally: authenticated responses are
// per-user and must never be cached or throttled on a shared key.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("", mw...)
	g.GET("/v1/flights", p.Home)
	g.GET("/v1/flights/search", p.Search)
	g.GET("/v1/flights/:num", p.Details)
	g.GET("/v1/airports", p.Airports)
}
