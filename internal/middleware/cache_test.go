package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyreserve/airline-reservation/internal/config"
)

func cacheTestConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
}

// A request carrying credentials must bypass the cache entirely: no
// lookup, no store.  The cached copy of a per-user response replayed
// to a different account would cross user boundaries.
func TestCacheBypassesCredentialedRequests(t *testing.T) {
	// client is never dialed on this path
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	mw := NewRedisCache(cacheTestConfig(), rdb)
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "fresh") })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/customer/profile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec := httptest.NewRecorder()

	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

// Redis being down must not take the browse endpoints with it: a
// failed lookup falls through to the handler.
func TestCacheFailsOpenWithoutRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	mw := NewRedisCache(cacheTestConfig(), rdb)
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "fresh") })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/flights", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestCacheDisabledIsPassthrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)
	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "fresh") })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/flights", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, "fresh", rec.Body.String())
}
