package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupProfileRoutes(e *echo.Echo, h *handlers.ProfileHandler, auth *middleware.AuthMiddleware, offline echo.MiddlewareFunc) {
	profile := e.Group("/api/v1/profile", auth.Middleware())
	profile.GET("", h.GetProfile)
	profile.PUT("", h.SaveProfile)

	ledger := e.Group("/api/v1/ledger", auth.Middleware())
	ledger.GET("/balance", h.Balance)
	ledger.POST("/upgrade", h.Upgrade, offline)
}
