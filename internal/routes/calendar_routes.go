package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupCalendarRoutes(e *echo.Echo, h *handlers.CalendarHandler, auth *middleware.AuthMiddleware, offline echo.MiddlewareFunc) {
	calendar := e.Group("/api/v1/calendar", auth.Middleware())

	calendar.GET("/events", h.ListEvents)
	calendar.POST("/events", h.CreateEvent)
	calendar.PUT("/events/:id", h.EditEvent)
	calendar.POST("/refresh", h.RefreshEvents)

	calendar.GET("/plan/templates", h.ListPlanTemplates)
	calendar.POST("/plan/generate", h.GeneratePlan)

	// The assessment burns tokens, do not let it run while the
	// backend is unreachable.
	calendar.GET("/intervention", h.InterventionStatus)
	calendar.POST("/intervention/respond", h.InterventionRespond, offline)
	calendar.POST("/intervention/assessment", h.InterventionAssessment, offline)
	calendar.POST("/intervention/abandon", h.InterventionAbandon)
}
