package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupReportRoutes(e *echo.Echo, h *handlers.ReportHandler, auth *middleware.AuthMiddleware) {
	reports := e.Group("/api/v1/reports", auth.Middleware())
	reports.GET("", h.ListReports)
	reports.POST("", h.CreateReport)
	reports.DELETE("/:id", h.DeleteReport)

	documents := e.Group("/api/v1/documents", auth.Middleware())
	documents.GET("", h.ListDocuments)
	documents.POST("", h.UploadDocument)
	documents.GET("/:id/content", h.DocumentContent)
	documents.DELETE("/:id", h.DeleteDocument)

	templates := e.Group("/api/v1/templates", auth.Middleware())
	templates.GET("", h.ListTemplates)
	templates.POST("", h.SaveTemplate)
	templates.DELETE("/:id", h.DeleteTemplate)
}
