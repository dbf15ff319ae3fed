package middleware

// identity.go provides the identity hook for the rate limiter's key
// strategies: buckets key on the authenticated account when one is
// present and fall back to "guest" otherwise.  On the public browse
// routes the limiter runs ahead of any authentication, so the key's
// user dimension is "guest" and the IP dimension does the work.

import "github.com/labstack/echo/v4"

// userID extracts the account identifier stored by JWTAuth.  Returns
// "guest" when the request is unauthenticated.
func userID(c echo.Context) string {
	if v, ok := c.Get("email").(string); ok && v != "" {
		return v
	}
	return "guest"
}
