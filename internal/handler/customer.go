package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/middleware"
	"github.com/skyreserve/airline-reservation/internal/repository"
)

// CustomerHandler serves the logged-in customer surface: dashboard,
// profile, spending reports and direct ticket purchase.  All methods
// assume JWT authentication and role validation already ran.
type CustomerHandler struct {
	Customers    *repository.CustomerRepo
	Flights      *repository.FlightRepo
	Reservations *repository.ReservationRepo
	RabbitURL    string
}

func NewCustomerHandler(cu *repository.CustomerRepo, fl *repository.FlightRepo, rs *repository.ReservationRepo, rabbitURL string) *CustomerHandler {
	if cu == nil || fl == nil || rs == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: cu, Flights: fl, Reservations: rs, RabbitURL: rabbitURL}
}

// Dashboard handles GET /v1/customer/flights.  It lists the customer's
// upcoming purchased flights; ?history=1 switches to past flights.
func (h *CustomerHandler) Dashboard(c echo.Context) error {
	email := middleware.Email(c)
	upcoming := c.QueryParam("history") == ""
	flights, err := h.Customers.FlightsByStatus(c.Request().Context(), email, upcoming)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}

// Profile handles GET /v1/customer/profile.
func (h *CustomerHandler) Profile(c echo.Context) error {
	email := middleware.Email(c)
	profile, err := h.Customers.Profile(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"profile": profile})
}

// Spending handles GET /v1/customer/spending.  By default it returns
// the total spent over the past year plus a month-by-month breakdown of
// the past six months.  Passing ?start=YYYY-MM-DD&end=YYYY-MM-DD
// switches the breakdown to that range.
func (h *CustomerHandler) Spending(c echo.Context) error {
	email := middleware.Email(c)
	ctx := c.Request().Context()

	total, err := h.Customers.TotalSpentSince(ctx, email, 1, database.Years)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load spending"})
	}

	start, end := c.QueryParam("start"), c.QueryParam("end")
	var months []database.Row
	if start != "" && end != "" {
		months, err = h.Customers.SpendingByMonthBetween(ctx, email, start, end)
	} else {
		months, err = h.Customers.SpendingByMonthSince(ctx, email, 6, database.Months)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load spending"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_past_year": total,
		"months":          months,
	})
}

type purchaseReq struct {
	AirlineName string `json:"airline_name"`
	FlightNum   int64  `json:"flight_num"`
}

// Purchase handles POST /v1/customer/purchase.  It allocates one unsold
// ticket on the requested flight to the customer.  Responds 409 when
// the flight is sold out and 404 when the flight does not exist.
func (h *CustomerHandler) Purchase(c echo.Context) error {
	email := middleware.Email(c)
	var req purchaseReq
	if err := c.Bind(&req); err != nil || req.AirlineName == "" || req.FlightNum == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airline_name and flight_num required"})
	}
	ctx := c.Request().Context()

	flight, err := h.Flights.Get(ctx, req.AirlineName, req.FlightNum)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
	}

	ticketID, err := h.Reservations.Reserve(ctx, req.AirlineName, req.FlightNum, email, nil)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoInventory):
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight is sold out"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "purchase contention, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
	}

	publishPurchase(h.RabbitURL, flight, ticketID, email, nil)
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_id":    ticketID,
		"airline_name": flight.AirlineName,
		"flight_num":   flight.FlightNum,
		"price":        flight.Price,
	})
}

// parseLimit reads an optional ?limit= query parameter with a default.
func parseLimit(c echo.Context, def int) int {
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			return n
		}
	}
	return def
}
