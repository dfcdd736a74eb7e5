package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
)

// RequireRole rejects callers whose role is not one of roles before the
// handler reads the request body, so a forbidden caller gets 403 even when
// the body is malformed.  It must run after Authenticate.  Services repeat
// the check for callers that do not come through HTTP.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := auth.Authorize(CallerFrom(c), roles...)
			if err == nil {
				return next(c)
			}
			e := apperr.Normalize(err)
			status := http.StatusForbidden
			if e.Kind == apperr.Unauthorized {
				status = http.StatusUnauthorized
			}
			return c.JSON(status, echo.Map{"error": e.Message})
		}
	}
}
