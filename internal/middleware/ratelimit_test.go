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

// A limiter that cannot reach Redis must fail open rather than block
// the browse endpoints.
func TestTokenBucketFailsOpenWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	mw := NewTokenBucket(cfg, rdb)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e := echo.New()
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/flights", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTokenBucketNilClientIsPassthrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/flights", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Bucket keys fold in the authenticated identity when one is present
// so two accounts never drain each other's allowance.
func TestRateKeySeparatesUsers(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	e := echo.New()

	ctxFor := func(email string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/v1/flights", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if email != "" {
			c.Set("email", email)
		}
		return c
	}

	alice := buildRateKey(cfg, ctxFor("alice@example.com"))
	bob := buildRateKey(cfg, ctxFor("bob@example.com"))
	guest := buildRateKey(cfg, ctxFor(""))

	assert.NotEqual(t, alice, bob)
	assert.Equal(t, "rl:user:alice@example.com", alice)
	assert.Equal(t, "rl:user:guest", guest)
}
