package router

import (
	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/handler"
	"github.com/skyreserve/airline-reservation/internal/middleware"
)

// RegisterAgent registers booking-agent endpoints under /v1/agent.  All
// routes require a valid JWT and the booking_agent role.  Agents search
// and sell tickets for the one airline they work for and review their
// commission.
func RegisterAgent(e *echo.Echo, h *handler.AgentHandler, jwtSecret string) {
	g := e.Group(
		"/v1/agent",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleAgent),
	)
	g.GET("/sales", h.Dashboard)
	g.GET("/flights/search", h.Search)
	g.POST("/purchase", h.Purchase)
	g.GET("/commission", h.Commission)
	g.GET("/top-customers", h.TopCustomers)
}
