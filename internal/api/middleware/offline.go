package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Reachability is the slice of the gateway the guard needs.
type Reachability interface {
	Offline() bool
}

// RequireBackend rejects requests early while the remote backend is
// unreachable, so billable operations never charge tokens for calls
// that cannot land.
func RequireBackend(backend Reachability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if backend.Offline() {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"error": "Backend is unreachable, try again shortly",
				})
			}
			return next(c)
		}
	}
}
