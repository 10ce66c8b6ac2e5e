package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/middleware"
	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/service"
)

// UserHandler bundles dependencies for user account endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// ----- DTOs -----

type phoneReq struct {
	PhoneNumber string `json:"phone_number"`
}

type otpConfirmReq struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

type setPasscodeReq struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Passcode    string `json:"passcode"`
}

type fullNameReq struct {
	FullName string `json:"full_name"`
}

type passcodeReq struct {
	Passcode string `json:"passcode"`
}

type emailReq struct {
	Email string `json:"email"`
}

type emailConfirmReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type userPart struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email,omitempty"`
	Image       string    `json:"image,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:          u.ID,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Image:       u.Image,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func principalID(c echo.Context) string {
	id, _ := c.Get(middleware.CtxPrincipalID).(string)
	return id
}

// readUpload pulls the named multipart file into memory.  A missing part
// yields a nil slice so callers can treat the upload as optional.
func readUpload(c echo.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", nil
	}
	src, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

// Signup starts registration: it sends an OTP to the phone number.
func (h *UserHandler) Signup(c echo.Context) error {
	var req phoneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone_number required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Signup(ctx, req.PhoneNumber); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent"})
}

// SignupConfirm checks the OTP.  No tokens are issued yet; the client
// continues to the passcode step.
func (h *UserHandler) SignupConfirm(c echo.Context) error {
	var req otpConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ConfirmSignupOTP(ctx, req.PhoneNumber, req.OTP); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp confirmed"})
}

// SetPasscode finishes registration, creates the account and opens a
// session with the user refresh cookie.
func (h *UserHandler) SetPasscode(c echo.Context) error {
	var req setPasscodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Passcode == "" || strings.TrimSpace(req.PhoneNumber) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone_number/passcode required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, pair, err := h.Users.SetPasscode(ctx, service.SetPasscodeInput(req))
	if err != nil {
		return fail(c, err)
	}
	writeRefreshCookie(c, cookieUserRefresh, userCookiePath, pair.RefreshToken, time.Until(pair.RefreshExp))
	return c.JSON(http.StatusCreated, echo.Map{
		"user":    toUserPart(u),
		"access":  tokenPart{Token: pair.AccessToken, Expires: pair.AccessExp},
		"refresh": tokenPart{Token: pair.RefreshToken, Expires: pair.RefreshExp},
	})
}

// Signin starts a login: sends an OTP to a registered, active phone number.
func (h *UserHandler) Signin(c echo.Context) error {
	var req phoneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Signin(ctx, req.PhoneNumber); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent"})
}

// SigninConfirm checks the OTP and opens a session.
func (h *UserHandler) SigninConfirm(c echo.Context) error {
	var req otpConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, pair, err := h.Users.ConfirmSigninOTP(ctx, req.PhoneNumber, req.OTP)
	if err != nil {
		return fail(c, err)
	}
	writeRefreshCookie(c, cookieUserRefresh, userCookiePath, pair.RefreshToken, time.Until(pair.RefreshExp))
	return c.JSON(http.StatusOK, echo.Map{
		"user":    toUserPart(u),
		"access":  tokenPart{Token: pair.AccessToken, Expires: pair.AccessExp},
		"refresh": tokenPart{Token: pair.RefreshToken, Expires: pair.RefreshExp},
	})
}

// Refresh exchanges the cookie-borne refresh token for a new access token.
func (h *UserHandler) Refresh(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	access, exp, err := h.Users.Refresh(ctx, refreshFromCookie(c, cookieUserRefresh))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access, Expires: exp},
	})
}

// Logout validates the refresh cookie and clears it.
func (h *UserHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Logout(ctx, refreshFromCookie(c, cookieUserRefresh)); err != nil {
		return fail(c, err)
	}
	clearRefreshCookie(c, cookieUserRefresh, userCookiePath)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's own record.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, principalID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// List returns all users (admin only).
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// EditFullName changes the caller's display name.
func (h *UserHandler) EditFullName(c echo.Context) error {
	var req fullNameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.FullName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.EditFullName(ctx, principalID(c), req.FullName); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// EditPasscode changes the caller's passcode.
func (h *UserHandler) EditPasscode(c echo.Context) error {
	var req passcodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Passcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passcode required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.EditPasscode(ctx, principalID(c), req.Passcode); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// EditAvatar replaces the caller's avatar with an uploaded file.
func (h *UserHandler) EditAvatar(c echo.Context) error {
	data, name, err := readUpload(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid upload"})
	}
	if data == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.EditAvatar(ctx, principalID(c), data, name); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// EditPhone starts a phone-number change: sends an OTP to the new number.
func (h *UserHandler) EditPhone(c echo.Context) error {
	var req phoneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone_number required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.RequestPhoneEdit(ctx, req.PhoneNumber); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent"})
}

// EditPhoneConfirm checks the OTP and commits the new number.
func (h *UserHandler) EditPhoneConfirm(c echo.Context) error {
	var req otpConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ConfirmPhoneEdit(ctx, principalID(c), req.PhoneNumber, req.OTP); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// EditEmail starts an email change: sends an OTP to the new address.
func (h *UserHandler) EditEmail(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.RequestEmailEdit(ctx, req.Email); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent"})
}

// EditEmailConfirm checks the OTP and commits the new address.
func (h *UserHandler) EditEmailConfirm(c echo.Context) error {
	var req emailConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.ConfirmEmailEdit(ctx, principalID(c), req.Email, req.OTP); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// Deactivate soft-deletes the caller's own account and clears the cookie.
func (h *UserHandler) Deactivate(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Deactivate(ctx, principalID(c)); err != nil {
		return fail(c, err)
	}
	clearRefreshCookie(c, cookieUserRefresh, userCookiePath)
	return c.NoContent(http.StatusOK)
}

// Delete hard-removes a user account and its avatar (admin only).
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusOK)
}
