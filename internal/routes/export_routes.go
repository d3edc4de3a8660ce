package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupExportRoutes(e *echo.Echo, h *handlers.ExportHandler, auth *middleware.AuthMiddleware, offline echo.MiddlewareFunc) {
	exports := e.Group("/api/v1/exports", auth.Middleware())
	exports.POST("/evidence", h.EvidencePackage, offline)
}
