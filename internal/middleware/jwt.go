package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/ulsoft/platform-auth/internal/token"
)

// Context keys under which the verified claims are stored for handlers and
// downstream guards.
const (
	CtxPrincipalID = "principal_id"
	CtxRole        = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the verified claims into the request context.  Verification
// goes through the same Issuer used when minting tokens, so every failure
// mode (missing header, malformed, expired, refresh-as-access) collapses to
// a single 401 without revealing which check failed.  Guards registered
// after this middleware read the principal via c.Get(CtxPrincipalID) and
// c.Get(CtxRole).
func JWTAuth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the JWT.  Anything
			// else is an authentication failure, not an authorization one.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := issuer.Verify(raw, token.Access)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxPrincipalID, claims.ID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
