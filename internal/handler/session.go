package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Refresh cookie contract: one httpOnly cookie per principal kind, path
// scoped to that kind's route group so an admin refresh token is never even
// transmitted to user endpoints (and vice versa).  Max-age matches the
// refresh token's own expiry; logout clears the cookie rather than letting
// it lapse.
const (
	cookieAdminRefresh = "refresh_token_admin"
	cookieUserRefresh  = "refresh_token_user"

	adminCookiePath = "/v1/admin"
	userCookiePath  = "/v1/users"
)

func writeRefreshCookie(c echo.Context, name, path, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
	})
}

func clearRefreshCookie(c echo.Context, name, path string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// refreshFromCookie reads the named refresh cookie; an absent cookie reads
// as an empty token, which verification then rejects like any other bad
// token.
func refreshFromCookie(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// tokenPart is the wire form of one issued token.
type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// sessionResp carries a freshly issued token pair.  The refresh token is
// additionally set as a cookie; it appears in the body as well so non-
// browser clients can store it.
type sessionResp struct {
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}
