package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/handler"
	"github.com/ulsoft/platform-auth/internal/middleware"
	"github.com/ulsoft/platform-auth/internal/token"
)

// RegisterRoutes wires every endpoint onto the Echo instance.  Guards are
// stacked per route: JWTAuth authenticates, then RequireSelf / AdminOnly /
// SuperAdminOnly authorize.  Public routes carry no middleware at all.
func RegisterRoutes(e *echo.Echo, issuer *token.Issuer, admins *handler.AdminHandler, users *handler.UserHandler, platforms *handler.PlatformHandler) {
	auth := middleware.JWTAuth(issuer)

	e.GET("/healthz", handler.Health)

	// Admin accounts: username/password sessions.
	a := e.Group("/v1/admin")
	a.POST("/super", admins.CreateSuper)
	a.POST("/signin", admins.Signin)
	a.POST("/refresh-token", admins.Refresh)
	a.POST("/logout", admins.Logout, auth)
	a.POST("", admins.Create, auth, middleware.SuperAdminOnly())
	a.GET("", admins.List, auth, middleware.SuperAdminOnly())
	a.GET("/me", admins.Me, auth, middleware.AdminOnly())
	a.GET("/:id", admins.Get, auth, middleware.RequireSelf("id"))
	a.PATCH("/:id", admins.EditProfile, auth, middleware.RequireSelf("id"))
	a.PATCH("/:id/deactivate", admins.Deactivate, auth, middleware.SuperAdminOnly())
	a.DELETE("/:id", admins.Delete, auth, middleware.SuperAdminOnly())

	// User accounts: phone + OTP + passcode sessions.
	u := e.Group("/v1/users")
	u.POST("/signup", users.Signup)
	u.POST("/signup-confirm", users.SignupConfirm)
	u.POST("/passcode", users.SetPasscode)
	u.POST("/signin", users.Signin)
	u.POST("/signin-confirm", users.SigninConfirm)
	u.POST("/refresh-token", users.Refresh)
	u.POST("/logout", users.Logout, auth)
	u.GET("", users.List, auth, middleware.AdminOnly())
	u.GET("/me", users.Me, auth)
	u.GET("/:id", users.Get, auth, middleware.RequireSelf("id"))
	u.PATCH("/avatar", users.EditAvatar, auth)
	u.PATCH("/fullname", users.EditFullName, auth)
	u.PATCH("/edit-passcode", users.EditPasscode, auth)
	u.PATCH("/edit-phone", users.EditPhone, auth)
	u.PATCH("/edit-phone-confirm", users.EditPhoneConfirm, auth)
	u.PATCH("/edit-email", users.EditEmail, auth)
	u.PATCH("/edit-email-confirm", users.EditEmailConfirm, auth)
	u.DELETE("/delete", users.Deactivate, auth)
	u.DELETE("/:id", users.Delete, auth, middleware.AdminOnly())

	// Platform catalog: reads are public, mutations are admin only.
	p := e.Group("/v1/platform")
	p.GET("", platforms.List)
	p.GET("/:id", platforms.Get)
	p.POST("", platforms.Create, auth, middleware.AdminOnly())
	p.PATCH("/:id", platforms.Update, auth, middleware.AdminOnly())
	p.DELETE("/:id", platforms.Delete, auth, middleware.AdminOnly())
}
