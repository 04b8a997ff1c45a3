package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles accepted on the reservation API.
const (
	RoleStaff = "STAFF"
	RoleAdmin = "ADMIN"
)

// RequireRole returns a middleware that lets the request through only
// when the role stored by JWTAuth is one of roles.  Anything else is
// answered with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(RoleKey).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
