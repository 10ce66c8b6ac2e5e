package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/repository"
	"github.com/ulsoft/platform-auth/internal/service"
	"github.com/ulsoft/platform-auth/internal/token"
)

// fail maps service and repository errors onto HTTP responses.  The merged
// error kinds (invalid credentials, invalid/expired OTP, invalid token)
// keep their single message on the wire so callers cannot probe which
// check rejected them.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidOrExpiredOTP):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "otp invalid or expired"})
	case errors.Is(err, token.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
