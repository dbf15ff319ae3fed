package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/config"
	"github.com/skyreserve/airline-reservation/internal/model"
	"github.com/skyreserve/airline-reservation/internal/repository"
	"github.com/skyreserve/airline-reservation/internal/utils"
)

// Role names carried in the JWT "role" claim.
const (
	RoleCustomer = "customer"
	RoleAgent    = "booking_agent"
	RoleStaff    = "airline_staff"
)

// AuthHandler bundles dependencies for auth endpoints.  Each of the
// three account kinds lives in its own table, so registration and login
// dispatch on the requested role.
type AuthHandler struct {
	Cfg       config.Config
	Customers *repository.CustomerRepo
	Agents    *repository.AgentRepo
	Staff     *repository.StaffRepo
	Fleet     *repository.FleetRepo
}

func NewAuthHandler(cfg config.Config, cu *repository.CustomerRepo, ag *repository.AgentRepo, st *repository.StaffRepo, fl *repository.FleetRepo) *AuthHandler {
	if cu == nil || ag == nil || st == nil || fl == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Customers: cu, Agents: ag, Staff: st, Fleet: fl}
}

// ----- DTOs -----

type registerReq struct {
	Role     string `json:"role"` // customer | booking_agent | airline_staff
	Email    string `json:"email"`
	Password string `json:"password"`

	// customer fields
	Name               string `json:"name"`
	BuildingNumber     string `json:"building_number"`
	Street             string `json:"street"`
	City               string `json:"city"`
	State              string `json:"state"`
	PhoneNumber        string `json:"phone_number"`
	PassportNumber     string `json:"passport_number"`
	PassportExpiration string `json:"passport_expiration"`
	PassportCountry    string `json:"passport_country"`
	DateOfBirth        string `json:"date_of_birth"`

	// booking agent fields
	BookingAgentID int64 `json:"booking_agent_id"`

	// airline staff fields
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AirlineName string `json:"airline_name"`
}

type loginReq struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Access tokenPart `json:"access"`
}

// Register creates an account of the requested role and returns an
// access token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch role {
	case RoleCustomer:
		err = h.Customers.Create(ctx, &model.Customer{
			Email: req.Email, Name: req.Name, PasswordHash: hash,
			BuildingNumber: req.BuildingNumber, Street: req.Street, City: req.City, State: req.State,
			PhoneNumber: req.PhoneNumber, PassportNumber: req.PassportNumber,
			PassportExpiration: req.PassportExpiration, PassportCountry: req.PassportCountry,
			DateOfBirth: req.DateOfBirth,
		})
	case RoleAgent:
		err = h.Agents.Create(ctx, &model.BookingAgent{
			Email: req.Email, PasswordHash: hash, BookingAgentID: req.BookingAgentID,
		})
	case RoleStaff:
		var ok bool
		ok, err = h.Fleet.AirlineExists(ctx, req.AirlineName)
		if err == nil && !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown airline"})
		}
		if err == nil {
			err = h.Staff.Create(ctx, &model.AirlineStaff{
				Username: req.Email, PasswordHash: hash,
				FirstName: req.FirstName, LastName: req.LastName,
				DateOfBirth: req.DateOfBirth, AirlineName: req.AirlineName,
			})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be customer, booking_agent or airline_staff"})
	}
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "account already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Email, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		Email:  req.Email,
		Role:   role,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login verifies credentials against the table matching the requested
// role and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var storedHash string
	var err error
	switch role {
	case RoleCustomer:
		var cu *model.Customer
		if cu, err = h.Customers.GetByEmail(ctx, req.Email); err == nil {
			storedHash = cu.PasswordHash
		}
	case RoleAgent:
		var ag *model.BookingAgent
		if ag, err = h.Agents.GetByEmail(ctx, req.Email); err == nil {
			storedHash = ag.PasswordHash
		}
	case RoleStaff:
		var st *model.AirlineStaff
		if st, err = h.Staff.GetByUsername(ctx, req.Email); err == nil {
			storedHash = st.PasswordHash
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be customer, booking_agent or airline_staff"})
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(storedHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Email, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		Email:  req.Email,
		Role:   role,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me is a simple protected endpoint echoing the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"email": c.Get("email"),
		"role":  c.Get("role"),
	})
}
