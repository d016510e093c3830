package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"emberfront/docs/swagger"
	"emberfront/internal/api"
	"emberfront/internal/config"
	"emberfront/internal/device"
	"emberfront/internal/events"
	"emberfront/internal/notify"
	"emberfront/internal/session"
	"emberfront/internal/shopapi"
	"emberfront/internal/stepup"
	"emberfront/internal/tasks"
	"emberfront/internal/utils/logger"
)

// 🚀 Main function
// @Summary Main function
// @Description Main function
// @title Emberfront API
// @version 1.0
// @description Session gateway for the Emberfront storefront
// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {

	log := logger.New("emberfront")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		log.Info("No .env file found, skipping environment variable loading")
	} else {
		log.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			stdlog.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to redis for the per-device token store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		stdlog.Fatalf("Failed to connect to redis: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("Failed to close redis connection: %v", err)
		}
	}()

	// Wire the store stack
	bus := events.NewEventBus()
	devices := device.NewStore(rdb, 0)
	apiClient := shopapi.NewClient(cfg.ShopAPI)
	sessions := session.NewManager(apiClient, devices, bus, cfg.ShopAPI.LoginTimeout)
	grants := stepup.NewRegistry(apiClient, bus, cfg.Session.StepUpTTL, cfg.ShopAPI.LoginTimeout)
	notifications := notify.NewService(devices, cfg.Notify, bus)

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(grants, log)
	if err := taskScheduler.Start(); err != nil {
		stdlog.Fatalf("Failed to start task scheduler: %v", err)
	}

	// Initialize API server
	apiServer := api.NewServer(cfg, apiClient, sessions, grants, notifications)
	go func() {
		log.Success("API server started")

		// Swagger documentation
		swagger.SwaggerInfo.Title = "Emberfront API Documentation"
		swagger.SwaggerInfo.Description = "Session gateway for the Emberfront storefront"
		swagger.SwaggerInfo.Version = "1.0"
		swagger.SwaggerInfo.Host = cfg.Server.PublicURL
		swagger.SwaggerInfo.Schemes = []string{"http", "https"}

		if err := apiServer.Start(); err != nil {
			log.Error("API server error", err)
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

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("Failed to shutdown API server", err)
	}

	log.Info("Servers shutdown gracefully")
}
