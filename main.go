package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"

	"github.com/rakitcita/platform-service/internal/config"
	"github.com/rakitcita/platform-service/internal/events"
	"github.com/rakitcita/platform-service/internal/handlers"
	"github.com/rakitcita/platform-service/internal/repositories/postgres"
	"github.com/rakitcita/platform-service/internal/security"
	"github.com/rakitcita/platform-service/internal/services"
	"github.com/rakitcita/platform-service/internal/storage"
	"github.com/rakitcita/platform-service/internal/utils"
	"github.com/rakitcita/platform-service/internal/validator"
	"github.com/rakitcita/platform-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize object storage
	uploader, err := storage.NewMinIOUploader(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize event publisher: Kafka when brokers are configured, an
	// in-memory mock otherwise so local development needs no broker.
	var eventPublisher events.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		eventPublisher, err = events.NewKafkaEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
	} else {
		eventPublisher = events.NewMockEventPublisher(slogLogger)
	}

	// Initialize AI client for recommendations
	aiConfig := openai.DefaultConfig(cfg.AI.APIKey)
	if cfg.AI.BaseURL != "" {
		aiConfig.BaseURL = cfg.AI.BaseURL
	}
	aiClient := openai.NewClientWithConfig(aiConfig)

	// Initialize security primitives
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	hasher := security.NewPasswordHasher()

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewServiceManager(
		repoManager.GetRepository(),
		tokenManager,
		hasher,
		eventPublisher,
		aiClient,
		slogLogger,
		validator,
		services.ServiceManagerConfig{AIModel: cfg.AI.Model, RedisClient: redisClient},
	)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, tokenManager, uploader, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown services
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	// Close database connection
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
