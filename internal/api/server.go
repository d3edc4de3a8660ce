package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/spservicesgroupinc-blip/custodyx/internal/api/middleware"
	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils"
)

// Dependencies bundles everything the HTTP surface needs. The handlers
// are built in main so the API server stays free of service wiring.
type Dependencies struct {
	Backend gateway.Backend
	Redis   *utils.RedisClient

	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Reports   *handlers.ReportHandler
	Calendar  *handlers.CalendarHandler
	Messages  *handlers.MessageHandler
	Assistant *handlers.AssistantHandler
	Exports   *handlers.ExportHandler
	Link      *handlers.LinkHandler
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Dependencies
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(middleware.RateLimiter(middleware.RateLimitConfig{Redis: deps.Redis}))

	s := &Server{
		echo:   e,
		config: cfg,
		deps:   deps,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// healthCheck reports process health plus the reachability of the two
// upstream dependencies.
// @Summary Health check
// @Description Report service, Redis and backend reachability
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) healthCheck(c echo.Context) error {
	redisOK := true
	if err := s.deps.Redis.HealthCheck(c.Request().Context()); err != nil {
		redisOK = false
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"redis":          redisOK,
		"backend_online": !s.deps.Backend.Offline(),
	})
}
