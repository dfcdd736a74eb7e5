package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/utils"
)

const callerKey = "caller"

// Authenticate validates the Bearer access token and stores the resulting
// *auth.Caller both on the echo context and on the request context.
// Requests without a valid token are answered with 401.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			id, _ := claims.UserID() // checked by ParseAccessToken

			caller := &auth.Caller{ID: id, Role: claims.Role}
			c.Set(callerKey, caller)
			c.SetRequest(c.Request().WithContext(auth.WithCaller(c.Request().Context(), caller)))
			return next(c)
		}
	}
}

// CallerFrom returns the caller set by Authenticate, or nil.
func CallerFrom(c echo.Context) *auth.Caller {
	caller, _ := c.Get(callerKey).(*auth.Caller)
	return caller
}
