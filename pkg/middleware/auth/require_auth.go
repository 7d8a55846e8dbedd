package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

type CookieAuth struct {
	JWTSecret []byte
}

func NewCookieAuth(secret []byte) *CookieAuth {
	return &CookieAuth{JWTSecret: secret}
}

// RequireAuth rejects requests without a valid access token cookie and puts
// the token subject and email into the echo context.
func (m *CookieAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "require_auth")

		cookie, err := c.Cookie(tokens.AccessCookieName)
		if err != nil || cookie.Value == "" {
			l.Warn("auth_rejected", "status", 401, "reason", "missing access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(cookie.Value, m.JWTSecret)
		if err != nil {
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookieName, "/"))
			l.Warn("auth_rejected", "status", 401, "reason", "invalid or expired token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxEmail, claims.Email)
		return next(c)
	}
}
