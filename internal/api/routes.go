package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/spservicesgroupinc-blip/custodyx/docs/swagger"
	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/routes"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "CustodyX API")
	})
	// Health check
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret)
	offline := middleware.RequireBackend(s.deps.Backend)

	routes.SetupAuthRoutes(s.echo, s.deps.Auth, auth)
	routes.SetupProfileRoutes(s.echo, s.deps.Profile, auth, offline)
	routes.SetupReportRoutes(s.echo, s.deps.Reports, auth)
	routes.SetupCalendarRoutes(s.echo, s.deps.Calendar, auth, offline)
	routes.SetupMessageRoutes(s.echo, s.deps.Messages, auth, offline)
	routes.SetupAssistantRoutes(s.echo, s.deps.Assistant, auth, offline)
	routes.SetupExportRoutes(s.echo, s.deps.Exports, auth, offline)
	routes.SetupLinkRoutes(s.echo, s.deps.Link, auth)
}
