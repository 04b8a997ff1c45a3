package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDKey is the context key holding the request id.
const RequestIDKey = "request_id"

const headerRequestID = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID header or generates a UUID,
// echoes it on the response and stores it for the logger and handlers.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(headerRequestID)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Set(RequestIDKey, id)
			c.Response().Header().Set(headerRequestID, id)
			return next(c)
		}
	}
}
