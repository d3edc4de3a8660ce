package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
)

func SetupAuthRoutes(e *echo.Echo, h *handlers.AuthHandler, auth *middleware.AuthMiddleware) {
	// Auth routes group
	authGroup := e.Group("/api/v1/auth")

	// Public routes
	authGroup.POST("/login", h.Login)
	authGroup.POST("/signup", h.Signup)

	// Authenticated routes
	session := authGroup.Group("", auth.Middleware())
	session.POST("/logout", h.Logout)
	session.GET("/me", h.Me)
}
