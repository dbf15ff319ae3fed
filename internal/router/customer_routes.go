package router

import (
	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/handler"
	"github.com/skyreserve/airline-reservation/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under
// /v1/customer.  All routes require a valid JWT and the customer role.
// Customers can view their purchased flights, inspect their profile,
// track spending and buy tickets directly.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/customer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleCustomer),
	)
	g.GET("/flights", h.Dashboard)
	g.GET("/profile", h.Profile)
	g.GET("/spending", h.Spending)
	g.POST("/purchase", h.Purchase)
}
