package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/ulsoft/platform-auth/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// principal holds one of the given roles.  It assumes JWTAuth already ran;
// a missing or foreign role yields 403 Forbidden, which is distinct from
// the 401 an unauthenticated request gets.  Stacked guards compose by
// conjunction: each one must pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// AdminOnly permits admins and superadmins.
func AdminOnly() echo.MiddlewareFunc {
	return RequireRole(model.RoleAdmin, model.RoleSuperAdmin)
}

// SuperAdminOnly permits superadmins alone.
func SuperAdminOnly() echo.MiddlewareFunc {
	return RequireRole(model.RoleSuperAdmin)
}
