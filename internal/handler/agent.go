package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/middleware"
	"github.com/skyreserve/airline-reservation/internal/repository"
)

// AgentHandler serves the booking-agent surface.  Agents sell tickets
// for the one airline they work for, earn a 5% commission on each sale,
// and see commission reports and top-customer rankings.
type AgentHandler struct {
	Agents       *repository.AgentRepo
	Customers    *repository.CustomerRepo
	Flights      *repository.FlightRepo
	Reservations *repository.ReservationRepo
	RabbitURL    string
}

func NewAgentHandler(ag *repository.AgentRepo, cu *repository.CustomerRepo, fl *repository.FlightRepo, rs *repository.ReservationRepo, rabbitURL string) *AgentHandler {
	if ag == nil || cu == nil || fl == nil || rs == nil {
		panic("nil repository passed to NewAgentHandler")
	}
	return &AgentHandler{Agents: ag, Customers: cu, Flights: fl, Reservations: rs, RabbitURL: rabbitURL}
}

// agentIdentity loads the agent record and its airline for the
// authenticated email.  An agent with no airline association may not
// search or sell.
func (h *AgentHandler) agentIdentity(c echo.Context) (agentID int64, airline string, err error) {
	email := middleware.Email(c)
	ag, err := h.Agents.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return 0, "", err
	}
	airline, err = h.Agents.AirlineFor(c.Request().Context(), ag.Email)
	if err != nil {
		return 0, "", err
	}
	return ag.BookingAgentID, airline, nil
}

// Dashboard handles GET /v1/agent/sales: upcoming flights of the
// agent's airline sold through the agent channel.
func (h *AgentHandler) Dashboard(c echo.Context) error {
	_, airline, err := h.agentIdentity(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "agent has no airline association"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent"})
	}
	sales, err := h.Agents.UpcomingSales(c.Request().Context(), airline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sales"})
	}
	return c.JSON(http.StatusOK, echo.Map{"airline": airline, "sales": sales})
}

// Search handles GET /v1/agent/flights/search.  Same parameters as the
// public search but restricted to the agent's airline.
func (h *AgentHandler) Search(c echo.Context) error {
	_, airline, err := h.agentIdentity(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "agent has no airline association"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent"})
	}
	source := c.QueryParam("source")
	destination := c.QueryParam("destination")
	date := c.QueryParam("date")
	if source == "" || destination == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source, destination and date are required"})
	}
	flights, err := h.Flights.Search(c.Request().Context(), source, destination, date, airline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"airline": airline, "flights": flights})
}

type agentPurchaseReq struct {
	AirlineName   string `json:"airline_name"`
	FlightNum     int64  `json:"flight_num"`
	CustomerEmail string `json:"customer_email"`
}

// Purchase handles POST /v1/agent/purchase: buy a ticket on behalf of a
// customer.  The flight must belong to the agent's airline and the
// customer must already have an account.
func (h *AgentHandler) Purchase(c echo.Context) error {
	agentID, airline, err := h.agentIdentity(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "agent has no airline association"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent"})
	}

	var req agentPurchaseReq
	if err := c.Bind(&req); err != nil || req.AirlineName == "" || req.FlightNum == 0 || req.CustomerEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airline_name, flight_num and customer_email required"})
	}
	if req.AirlineName != airline {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "agent does not sell for this airline"})
	}
	customerEmail := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	ctx := c.Request().Context()

	if _, err := h.Customers.GetByEmail(ctx, customerEmail); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load customer"})
	}
	flight, err := h.Flights.Get(ctx, req.AirlineName, req.FlightNum)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
	}

	ticketID, err := h.Reservations.Reserve(ctx, req.AirlineName, req.FlightNum, customerEmail, &agentID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoInventory):
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight is sold out"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "purchase contention, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
	}

	publishPurchase(h.RabbitURL, flight, ticketID, customerEmail, &agentID)
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_id":      ticketID,
		"airline_name":   flight.AirlineName,
		"flight_num":     flight.FlightNum,
		"customer_email": customerEmail,
		"commission":     flight.Price * 0.05,
	})
}

// Commission handles GET /v1/agent/commission.  Default window is the
// past 30 days; ?start=&end= selects an explicit range.
func (h *AgentHandler) Commission(c echo.Context) error {
	agentID, _, err := h.agentIdentity(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "agent has no airline association"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent"})
	}
	ctx := c.Request().Context()

	start, end := c.QueryParam("start"), c.QueryParam("end")
	var summary database.Row
	if start != "" && end != "" {
		summary, err = h.Agents.CommissionBetween(ctx, agentID, start, end)
	} else {
		summary, err = h.Agents.CommissionSince(ctx, agentID, 30, database.Days)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load commission"})
	}
	return c.JSON(http.StatusOK, echo.Map{"commission": summary})
}

// TopCustomers handles GET /v1/agent/top-customers: the agent's top 5
// customers by tickets over six months and by commission over a year.
func (h *AgentHandler) TopCustomers(c echo.Context) error {
	agentID, _, err := h.agentIdentity(c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "agent has no airline association"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent"})
	}
	ctx := c.Request().Context()
	limit := parseLimit(c, 5)

	byTickets, err := h.Agents.TopCustomersByTickets(ctx, agentID, 6, database.Months, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rankings"})
	}
	byCommission, err := h.Agents.TopCustomersByCommission(ctx, agentID, 1, database.Years, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rankings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"by_tickets":    byTickets,
		"by_commission": byCommission,
	})
}
