package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireSelf returns a middleware that permits a request only when the
// authenticated principal's id equals the path parameter addressing the
// resource.  Ownership is the only criterion: an admin hitting another
// principal's self-guarded route is rejected the same way.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(CtxPrincipalID).(string)
			if !ok || id == "" || c.Param(param) != id {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
