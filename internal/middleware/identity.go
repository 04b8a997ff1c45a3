package middleware

// identity.go holds the helpers shared by the middleware and the
// handlers to read who is calling.

import "github.com/labstack/echo/v4"

// Actor returns the authenticated subject, or "anonymous" on routes
// that do not run JWTAuth.
func Actor(c echo.Context) string {
	if v, ok := c.Get(ActorKey).(string); ok && v != "" {
		return v
	}
	return "anonymous"
}

// RequestIDOf returns the id assigned by the RequestID middleware.
func RequestIDOf(c echo.Context) string {
	if v, ok := c.Get(RequestIDKey).(string); ok {
		return v
	}
	return ""
}
