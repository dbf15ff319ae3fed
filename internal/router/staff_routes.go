package router

import (
	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/handler"
	"github.com/skyreserve/airline-reservation/internal/middleware"
)

// RegisterStaff registers airline-staff endpoints under /v1/staff.  All
// routes require a valid JWT and the airline_staff role; mutating
// endpoints additionally check the Admin or Operator permission inside
// the handler, since permissions live in the database rather than the
// token.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleStaff),
	)

	// ---- Flights ----
	g.GET("/flights", h.Dashboard)
	g.POST("/flights", h.CreateFlight)
	g.GET("/flights/:num/customers", h.FlightCustomers)
	g.PUT("/flights/:num/status", h.UpdateStatus)

	// ---- Fleet ----
	g.GET("/airplanes", h.Airplanes)
	g.POST("/airplanes", h.AddAirplane)
	g.POST("/airports", h.AddAirport)

	// ---- Permissions ----
	g.GET("/members", h.StaffMembers)
	g.POST("/permissions", h.GrantPermission)

	// ---- Reports ----
	g.GET("/agents", h.Agents)
	g.GET("/customers", h.FrequentCustomers)
	g.GET("/customers/:email/flights", h.CustomerFlights)
	g.GET("/reports", h.Reports)
	g.GET("/revenue", h.Revenue)
	g.GET("/top-destinations", h.TopDestinations)
}
