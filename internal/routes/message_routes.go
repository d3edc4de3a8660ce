package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupMessageRoutes(e *echo.Echo, h *handlers.MessageHandler, auth *middleware.AuthMiddleware, offline echo.MiddlewareFunc) {
	messages := e.Group("/api/v1/messages", auth.Middleware())

	messages.GET("", h.ListMessages)
	messages.POST("", h.SendMessage)
	messages.PUT("/autoreply", h.SetAutoReply)

	// Billable operations stay behind the offline gate.
	messages.POST("/analysis", h.AnalyzeMessages, offline)
	messages.POST("/report", h.ReportFromChat, offline)
}

func SetupAssistantRoutes(e *echo.Echo, h *handlers.AssistantHandler, auth *middleware.AuthMiddleware, offline echo.MiddlewareFunc) {
	assistant := e.Group("/api/v1/assistant", auth.Middleware())
	assistant.POST("/chat", h.Chat, offline)
}
