package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identity names the client of a request for rate limiting: the caller id
// when authenticated, "anon" otherwise.
func identity(c echo.Context) string {
	if caller := CallerFrom(c); caller != nil {
		return strconv.FormatUint(caller.ID, 10)
	}
	return "anon"
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
