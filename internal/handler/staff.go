package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/middleware"
	"github.com/skyreserve/airline-reservation/internal/model"
	"github.com/skyreserve/airline-reservation/internal/repository"
)

// StaffHandler serves the airline-staff surface: flight management,
// fleet management, permission grants and airline-wide reports.  Every
// operation is scoped to the staff member's own airline; mutations
// additionally require the Admin or Operator permission.
type StaffHandler struct {
	Staff   *repository.StaffRepo
	Flights *repository.FlightRepo
	Fleet   *repository.FleetRepo
}

func NewStaffHandler(st *repository.StaffRepo, fl *repository.FlightRepo, fleet *repository.FleetRepo) *StaffHandler {
	if st == nil || fl == nil || fleet == nil {
		panic("nil repository passed to NewStaffHandler")
	}
	return &StaffHandler{Staff: st, Flights: fl, Fleet: fleet}
}

// staffAirline resolves the authenticated staff member's airline.
func (h *StaffHandler) staffAirline(c echo.Context) (string, error) {
	st, err := h.Staff.GetByUsername(c.Request().Context(), middleware.Email(c))
	if err != nil {
		return "", err
	}
	return st.AirlineName, nil
}

// requirePermission aborts with 403 unless the staff member holds the
// given permission.  Returns false when the response was already written.
func (h *StaffHandler) requirePermission(c echo.Context, permission string) bool {
	ok, err := h.Staff.HasPermission(c.Request().Context(), middleware.Email(c), permission)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission check failed"})
		return false
	}
	if !ok {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": permission + " permission required"})
		return false
	}
	return true
}

// Dashboard handles GET /v1/staff/flights.  Without parameters it lists
// the airline's flights departing in the next 30 days with sold-ticket
// counts; ?start=&end= (plus optional source/destination substrings)
// switches to an explicit filter.
func (h *StaffHandler) Dashboard(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	ctx := c.Request().Context()

	start, end := c.QueryParam("start"), c.QueryParam("end")
	var flights []database.Row
	if start != "" && end != "" {
		flights, err = h.Flights.FilterWithCounts(ctx, airline, start, end,
			c.QueryParam("source"), c.QueryParam("destination"))
	} else {
		flights, err = h.Flights.UpcomingWithCounts(ctx, airline)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}
	return c.JSON(http.StatusOK, echo.Map{"airline": airline, "flights": flights})
}

// FlightCustomers handles GET /v1/staff/flights/:num/customers.
func (h *StaffHandler) FlightCustomers(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	num, err := strconv.ParseInt(c.Param("num"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight number"})
	}
	customers, err := h.Flights.Customers(c.Request().Context(), airline, num)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load customers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

type createFlightReq struct {
	FlightNum        int64   `json:"flight_num"`
	DepartureAirport string  `json:"departure_airport"`
	DepartureTime    string  `json:"departure_time"` // YYYY-MM-DD HH:MM:SS
	ArrivalAirport   string  `json:"arrival_airport"`
	ArrivalTime      string  `json:"arrival_time"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	AirplaneID       int64   `json:"airplane_id"`
}

// CreateFlight handles POST /v1/staff/flights (Admin).  The flight and
// its full ticket inventory are created atomically.
func (h *StaffHandler) CreateFlight(c echo.Context) error {
	if !h.requirePermission(c, model.PermissionAdmin) {
		return nil
	}
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}

	var req createFlightReq
	if err := c.Bind(&req); err != nil || req.FlightNum == 0 || req.DepartureAirport == "" || req.ArrivalAirport == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight payload"})
	}
	dep, err := time.Parse("2006-01-02 15:04:05", req.DepartureTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departure_time"})
	}
	arr, err := time.Parse("2006-01-02 15:04:05", req.ArrivalTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid arrival_time"})
	}
	status := req.Status
	if status == "" {
		status = model.FlightUpcoming
	}
	if !model.ValidFlightStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	flight := &model.Flight{
		AirlineName:      airline,
		FlightNum:        req.FlightNum,
		DepartureAirport: req.DepartureAirport,
		DepartureTime:    dep,
		ArrivalAirport:   req.ArrivalAirport,
		ArrivalTime:      arr,
		Price:            req.Price,
		Status:           status,
		AirplaneID:       req.AirplaneID,
	}
	if err := h.Flights.Create(c.Request().Context(), flight); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight number already exists"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown airplane"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create flight failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"flight": flight})
}

// UpdateStatus handles PUT /v1/staff/flights/:num/status (Operator).
func (h *StaffHandler) UpdateStatus(c echo.Context) error {
	if !h.requirePermission(c, model.PermissionOperator) {
		return nil
	}
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	num, err := strconv.ParseInt(c.Param("num"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight number"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || !model.ValidFlightStatus(body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if err := h.Flights.UpdateStatus(c.Request().Context(), airline, num, body.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flight_num": num, "status": body.Status})
}

// AddAirplane handles POST /v1/staff/airplanes (Admin).
func (h *StaffHandler) AddAirplane(c echo.Context) error {
	if !h.requirePermission(c, model.PermissionAdmin) {
		return nil
	}
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	var body struct {
		AirplaneID int64 `json:"airplane_id"`
		Seats      int   `json:"seats"`
	}
	if err := c.Bind(&body); err != nil || body.AirplaneID == 0 || body.Seats <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airplane_id and positive seats required"})
	}
	p := &model.Airplane{AirlineName: airline, AirplaneID: body.AirplaneID, Seats: body.Seats}
	if err := h.Fleet.AddAirplane(c.Request().Context(), p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "airplane already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add airplane failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"airplane": p})
}

// Airplanes handles GET /v1/staff/airplanes: the airline's fleet.
func (h *StaffHandler) Airplanes(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	planes, err := h.Fleet.Airplanes(c.Request().Context(), airline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airplanes"})
	}
	return c.JSON(http.StatusOK, echo.Map{"airplanes": planes})
}

// AddAirport handles POST /v1/staff/airports (Admin).
func (h *StaffHandler) AddAirport(c echo.Context) error {
	if !h.requirePermission(c, model.PermissionAdmin) {
		return nil
	}
	var body struct {
		AirportName string `json:"airport_name"`
		AirportCity string `json:"airport_city"`
	}
	if err := c.Bind(&body); err != nil || body.AirportName == "" || body.AirportCity == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "airport_name and airport_city required"})
	}
	a := &model.Airport{AirportName: body.AirportName, AirportCity: body.AirportCity}
	if err := h.Fleet.AddAirport(c.Request().Context(), a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "airport already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add airport failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"airport": a})
}

// GrantPermission handles POST /v1/staff/permissions (Admin): grant
// Admin or Operator to another staff member of the same airline.
func (h *StaffHandler) GrantPermission(c echo.Context) error {
	if !h.requirePermission(c, model.PermissionAdmin) {
		return nil
	}
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	var body struct {
		Username   string `json:"username"`
		Permission string `json:"permission"`
	}
	if err := c.Bind(&body); err != nil ||
		(body.Permission != model.PermissionAdmin && body.Permission != model.PermissionOperator) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and permission (Admin|Operator) required"})
	}
	ctx := c.Request().Context()

	grantee, err := h.Staff.GetByUsername(ctx, body.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff member"})
	}
	if grantee.AirlineName != airline {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "staff member belongs to another airline"})
	}
	if err := h.Staff.GrantPermission(ctx, grantee.Username, body.Permission); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "permission already granted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant permission failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"username": grantee.Username, "permission": body.Permission})
}

// StaffMembers handles GET /v1/staff/members: colleagues at the same
// airline, for the permission-granting page.
func (h *StaffHandler) StaffMembers(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	members, err := h.Staff.ListByAirline(c.Request().Context(), airline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff"})
	}
	return c.JSON(http.StatusOK, echo.Map{"staff": members})
}

// Agents handles GET /v1/staff/agents (Admin): booking agents ranked by
// tickets sold over the past month and year, and by commission over the
// past year.
func (h *StaffHandler) Agents(c echo.Context) error {
	if !h.requirePermission(c, model.PermissionAdmin) {
		return nil
	}
	ctx := c.Request().Context()
	limit := parseLimit(c, 5)

	byMonth, err := h.Staff.TopAgentsBySales(ctx, 1, database.Months, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent rankings"})
	}
	byYear, err := h.Staff.TopAgentsBySales(ctx, 1, database.Years, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent rankings"})
	}
	byCommission, err := h.Staff.TopAgentsByCommission(ctx, 1, database.Years, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load agent rankings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"by_sales_month": byMonth,
		"by_sales_year":  byYear,
		"by_commission":  byCommission,
	})
}

// FrequentCustomers handles GET /v1/staff/customers: the airline's most
// frequent customers over the past year.
func (h *StaffHandler) FrequentCustomers(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	customers, err := h.Staff.FrequentCustomers(c.Request().Context(), airline, 1, database.Years, parseLimit(c, 10))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load customers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

// CustomerFlights handles GET /v1/staff/customers/:email/flights: all
// flights one customer has taken on the airline.
func (h *StaffHandler) CustomerFlights(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	flights, err := h.Staff.CustomerFlights(c.Request().Context(), airline, c.Param("email"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}

// Reports handles GET /v1/staff/reports: tickets sold by the airline,
// total plus month-by-month.  Defaults to the past year; ?start=&end=
// selects a range.
func (h *StaffHandler) Reports(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	ctx := c.Request().Context()
	start, end := c.QueryParam("start"), c.QueryParam("end")

	var total int
	var months []database.Row
	if start != "" && end != "" {
		if total, err = h.Staff.TicketsSoldBetween(ctx, airline, start, end); err == nil {
			months, err = h.Staff.MonthWiseSalesBetween(ctx, airline, start, end)
		}
	} else {
		if total, err = h.Staff.TicketsSoldSince(ctx, airline, 1, database.Years); err == nil {
			months, err = h.Staff.MonthWiseSalesSince(ctx, airline, 1, database.Years)
		}
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load report"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_tickets_sold": total,
		"months":             months,
	})
}

// Revenue handles GET /v1/staff/revenue: direct versus agent-mediated
// ticket revenue over the past month and the past year.
func (h *StaffHandler) Revenue(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	ctx := c.Request().Context()

	type split struct {
		Direct   float64 `json:"direct"`
		ViaAgent float64 `json:"via_agent"`
	}
	var month, year split
	if month.Direct, err = h.Staff.RevenueSince(ctx, airline, false, 1, database.Months); err == nil {
		if month.ViaAgent, err = h.Staff.RevenueSince(ctx, airline, true, 1, database.Months); err == nil {
			if year.Direct, err = h.Staff.RevenueSince(ctx, airline, false, 1, database.Years); err == nil {
				year.ViaAgent, err = h.Staff.RevenueSince(ctx, airline, true, 1, database.Years)
			}
		}
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load revenue"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"last_month": month,
		"last_year":  year,
	})
}

// TopDestinations handles GET /v1/staff/top-destinations: the airline's
// most-flown arrival cities over the past three months and past year.
func (h *StaffHandler) TopDestinations(c echo.Context) error {
	airline, err := h.staffAirline(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load staff account"})
	}
	ctx := c.Request().Context()
	limit := parseLimit(c, 3)

	threeMonths, err := h.Flights.TopDestinations(ctx, airline, 3, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load destinations"})
	}
	year, err := h.Flights.TopDestinations(ctx, airline, 12, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load destinations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"past_three_months": threeMonths,
		"past_year":         year,
	})
}
