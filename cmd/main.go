package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/spservicesgroupinc-blip/custodyx/docs/swagger"
	"github.com/spservicesgroupinc-blip/custodyx/internal/api"
	"github.com/spservicesgroupinc-blip/custodyx/internal/collaborator"
	"github.com/spservicesgroupinc-blip/custodyx/internal/config"
	"github.com/spservicesgroupinc-blip/custodyx/internal/gateway"
	"github.com/spservicesgroupinc-blip/custodyx/internal/handlers"
	"github.com/spservicesgroupinc-blip/custodyx/internal/services"
	"github.com/spservicesgroupinc-blip/custodyx/internal/state"
	"github.com/spservicesgroupinc-blip/custodyx/internal/tasks"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils"
	"github.com/spservicesgroupinc-blip/custodyx/internal/utils/logger"
)

// @title CustodyX API
// @version 1.0
// @description Synchronization and state service for the CustodyX co-parenting documentation app
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	mainLog := logger.New("custodyx")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		mainLog.Info("No .env file found, skipping environment variable loading")
	} else {
		mainLog.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to Redis
	redisClient, err := utils.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			mainLog.Warn("Failed to close Redis connection: %v", err)
		}
	}()

	// Remote backend gateway with its reachability probe
	backend := gateway.NewClient(cfg.Backend)

	probeCtx, probeCancel := context.WithCancel(context.Background())
	defer probeCancel()
	go backend.StartProbe(probeCtx, cfg.Backend.ProbeEvery)

	// Collaborator client
	collab, err := collaborator.NewClient(context.Background(), cfg.Collaborator)
	if err != nil {
		log.Fatalf("Failed to initialize collaborator client: %v", err)
	}

	// Session state and task plumbing
	manager := state.NewManager()
	taskClient := tasks.NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	defer taskClient.Close()

	// Optional S3 archive for evidence exports
	var archiver services.Archiver
	if cfg.Storage.Provider == "s3" {
		s3Service, err := services.NewS3Service(cfg.Storage.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		archiver = s3Service
		mainLog.Info("S3 evidence archive enabled")
	}

	// Domain services
	ledger := services.NewLedgerService(cfg.Ledger, taskClient)
	items := services.NewItemService(backend, ledger, taskClient)
	calendar := services.NewCalendarService(backend, cfg.Calendar)
	intervention := services.NewInterventionService(collab, items, calendar)
	messaging := services.NewMessagingService(backend, collab, ledger, cfg.Messaging)
	link := services.NewLinkService(backend, taskClient)
	analysis := services.NewAnalysisService(collab, ledger, items)
	export := services.NewExportService(ledger, items, archiver)
	sessions := services.NewSessionService(redisClient, cfg.JWT)
	refresher := services.NewRefresher(manager, calendar, link)

	// Initialize task handlers
	taskHandler := tasks.NewTaskHandler(backend, refresher)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize task server
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Worker.Concurrency,
		taskHandler,
		zapLogger,
	)

	// Create a context for task server
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Start task server
	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			mainLog.Error("Task server error: %v", err)
		}
	}()

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		mainLog,
	)

	// Start task scheduler
	go func() {
		if err := taskScheduler.Start(); err != nil {
			mainLog.Error("Task scheduler error: %v", err)
		}
	}()

	// Initialize API server
	apiServer := api.NewServer(cfg, api.Dependencies{
		Backend:   backend,
		Redis:     redisClient,
		Auth:      handlers.NewAuthHandler(backend, manager, items, messaging, sessions),
		Profile:   handlers.NewProfileHandler(manager, items, ledger),
		Reports:   handlers.NewReportHandler(manager, items),
		Calendar:  handlers.NewCalendarHandler(manager, calendar, intervention),
		Messages:  handlers.NewMessageHandler(manager, messaging, analysis),
		Assistant: handlers.NewAssistantHandler(manager, analysis),
		Exports:   handlers.NewExportHandler(manager, export),
		Link:      handlers.NewLinkHandler(manager, link),
	})

	go func() {
		// Swagger documentation
		swagger.SwaggerInfo.Title = "CustodyX API Documentation"
		swagger.SwaggerInfo.Description = "API documentation for the CustodyX synchronization service"
		swagger.SwaggerInfo.Version = "1.0"

		mainLog.Success("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			mainLog.Error("API server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop task scheduler
	taskScheduler.Stop()

	// Stop task server
	serverCancel()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		mainLog.Error("Failed to shutdown API server: %v", err)
	}

	mainLog.Info("Servers shutdown gracefully")
}
