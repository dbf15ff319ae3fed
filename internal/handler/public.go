package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: the landing
// page listing, the airport pickers and flight search.
type PublicHandler struct {
	Flights *repository.FlightRepo
	Fleet   *repository.FleetRepo
}

func NewPublicHandler(fl *repository.FlightRepo, fleet *repository.FleetRepo) *PublicHandler {
	if fl == nil || fleet == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Flights: fl, Fleet: fleet}
}

// Home handles GET /v1/flights.  It returns every flight together with
// the distinct departure and arrival airports used to populate search
// dropdowns.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	flights, err := h.Flights.All(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}
	sources, err := h.Flights.DistinctAirports(ctx, "departure_airport")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airports"})
	}
	destinations, err := h.Flights.DistinctAirports(ctx, "arrival_airport")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airports"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flights":      flights,
		"sources":      sources,
		"destinations": destinations,
	})
}

// Search handles GET /v1/flights/search?source=..&destination=..&date=YYYY-MM-DD.
func (h *PublicHandler) Search(c echo.Context) error {
	source := c.QueryParam("source")
	destination := c.QueryParam("destination")
	date := c.QueryParam("date")
	if source == "" || destination == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source, destination and date are required"})
	}
	flights, err := h.Flights.Search(c.Request().Context(), source, destination, date, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}

// Details handles GET /v1/flights/:num.  It returns the first flight
// with the given number; the public page only knows the number.
func (h *PublicHandler) Details(c echo.Context) error {
	num, err := strconv.ParseInt(c.Param("num"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight number"})
	}
	flight, err := h.Flights.GetByNum(c.Request().Context(), num)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flight"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flight": flight})
}

// Airports handles GET /v1/airports, listing every registered airport.
func (h *PublicHandler) Airports(c echo.Context) error {
	airports, err := h.Fleet.Airports(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load airports"})
	}
	return c.JSON(http.StatusOK, echo.Map{"airports": airports})
}
