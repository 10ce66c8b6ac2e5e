package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/middleware"
	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/service"
)

// AdminHandler bundles dependencies for admin account endpoints.
type AdminHandler struct {
	Admins *service.AdminService
}

func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{Admins: admins}
}

// ----- DTOs -----

type createAdminReq struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type adminSigninReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateAdminReq struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type adminPart struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAdminPart(a model.Admin) adminPart {
	return adminPart{
		ID:          a.ID,
		Username:    a.Username,
		Role:        a.Role,
		PhoneNumber: a.PhoneNumber,
		Email:       a.Email,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// CreateSuper bootstraps the first superadmin.  The route carries no
// guard; it exists for initial provisioning.
func (h *AdminHandler) CreateSuper(c echo.Context) error {
	var req createAdminReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.CreateSuperAdmin(ctx, service.CreateAdminInput(req)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// Create adds a regular admin; the router stacks JWTAuth + SuperAdminOnly
// in front of it.
func (h *AdminHandler) Create(c echo.Context) error {
	var req createAdminReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.CreateAdmin(ctx, service.CreateAdminInput(req)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// Signin verifies username/password, issues a token pair and binds the
// refresh token to the admin cookie.
func (h *AdminHandler) Signin(c echo.Context) error {
	var req adminSigninReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	_, pair, err := h.Admins.Signin(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}
	writeRefreshCookie(c, cookieAdminRefresh, adminCookiePath, pair.RefreshToken, time.Until(pair.RefreshExp))
	return c.JSON(http.StatusOK, sessionResp{
		Access:  tokenPart{Token: pair.AccessToken, Expires: pair.AccessExp},
		Refresh: tokenPart{Token: pair.RefreshToken, Expires: pair.RefreshExp},
	})
}

// Refresh exchanges the cookie-borne refresh token for a new access token.
// The refresh token is not rotated.
func (h *AdminHandler) Refresh(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	access, exp, err := h.Admins.Refresh(ctx, refreshFromCookie(c, cookieAdminRefresh))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access, Expires: exp},
	})
}

// Logout validates the refresh cookie and clears it.  A bad or missing
// cookie is an error, not a silent success.
func (h *AdminHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.Logout(ctx, refreshFromCookie(c, cookieAdminRefresh)); err != nil {
		return fail(c, err)
	}
	clearRefreshCookie(c, cookieAdminRefresh, adminCookiePath)
	return c.NoContent(http.StatusNoContent)
}

// List returns all admin accounts (superadmin only).
func (h *AdminHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	admins, err := h.Admins.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]adminPart, 0, len(admins))
	for _, a := range admins {
		out = append(out, toAdminPart(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one admin by id.
func (h *AdminHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Admins.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toAdminPart(a))
}

// EditProfile merges the provided fields into the admin's own record.
func (h *AdminHandler) EditProfile(c echo.Context) error {
	var req updateAdminReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.EditProfile(ctx, c.Param("id"), service.UpdateAdminInput(req)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Deactivate soft-deletes an admin account (superadmin only).
func (h *AdminHandler) Deactivate(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.Deactivate(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Delete hard-removes an admin account (superadmin only).
func (h *AdminHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Admins.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Me returns the authenticated admin's own record.
func (h *AdminHandler) Me(c echo.Context) error {
	id, _ := c.Get(middleware.CtxPrincipalID).(string)

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Admins.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toAdminPart(a))
}
