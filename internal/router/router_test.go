package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/skyreserve/airline-reservation/internal/handler"
)

// The browse middlewares (response cache, rate limiter) are installed
// through RegisterPublic only.  A request to an authenticated route
// must never pass through them: a cached customer profile replayed to
// another account would leak data across users.
func TestPublicMiddlewareScopedToBrowseRoutes(t *testing.T) {
	e := echo.New()
	var hits int
	marker := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hits++
			return c.NoContent(http.StatusNoContent)
		}
	}
	RegisterPublic(e, handler.NewPublicHandler(nil, nil), marker)
	RegisterCustomer(e, handler.NewCustomerHandler(nil, nil, nil, ""), "secret")

	req := httptest.NewRequest(http.MethodGet, "/v1/flights", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, 1, hits)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/customer/profile", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, 1, hits, "browse middleware must not run on customer routes")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
