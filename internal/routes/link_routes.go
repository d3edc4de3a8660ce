package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupLinkRoutes(e *echo.Echo, h *handlers.LinkHandler, auth *middleware.AuthMiddleware) {
	link := e.Group("/api/v1/link", auth.Middleware())

	link.POST("", h.RequestLink)
	link.GET("/invites", h.ListInvites)
	link.POST("/invites/:id/respond", h.RespondToInvite)
}
