package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"

	"github.com/rakitcita/platform-service/internal/cache"
	"github.com/rakitcita/platform-service/internal/events"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/security"
	"github.com/rakitcita/platform-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	AIModel        string
	DefaultTimeout time.Duration

	// RedisClient may be nil; caching degrades gracefully without it.
	RedisClient *redis.Client
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo           repositories.Repository
	tokenManager   *security.TokenManager
	hasher         *security.PasswordHasher
	eventPublisher events.EventPublisher
	aiClient       *openai.Client
	logger         *slog.Logger
	validator      *validator.Validator
	config         ServiceManagerConfig

	// Service instances
	userService           UserService
	courseService         CourseService
	communityService      CommunityService
	recommendationService RecommendationService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	repo repositories.Repository,
	tokenManager *security.TokenManager,
	hasher *security.PasswordHasher,
	eventPublisher events.EventPublisher,
	aiClient *openai.Client,
	logger *slog.Logger,
	validator *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	return &serviceManager{
		repo:           repo,
		tokenManager:   tokenManager,
		hasher:         hasher,
		eventPublisher: eventPublisher,
		aiClient:       aiClient,
		logger:         logger,
		validator:      validator,
		config:         config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	recommendationCache := cache.NewCacheHelper(sm.config.RedisClient, cache.RecommendationCacheConfig.Prefix)

	sm.userService = NewUserService(sm.repo, sm.tokenManager, sm.hasher, sm.eventPublisher, recommendationCache, sm.logger, sm.validator)
	sm.courseService = NewCourseService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.communityService = NewCommunityService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.recommendationService = NewRecommendationService(sm.repo, sm.aiClient, sm.config.AIModel, recommendationCache, sm.logger, sm.validator)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.courseService
}

func (sm *serviceManager) Community() CommunityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.communityService
}

func (sm *serviceManager) Recommendation() RecommendationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.recommendationService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
