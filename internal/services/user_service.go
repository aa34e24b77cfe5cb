package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rakitcita/platform-service/internal/cache"
	"github.com/rakitcita/platform-service/internal/events"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/security"
	"github.com/rakitcita/platform-service/internal/validator"
)

type userService struct {
	repo                repositories.Repository
	tokenManager        *security.TokenManager
	hasher              *security.PasswordHasher
	eventPublisher      events.EventPublisher
	recommendationCache *cache.CacheHelper
	logger              *slog.Logger
	validator           *validator.Validator
}

func NewUserService(
	repo repositories.Repository,
	tokenManager *security.TokenManager,
	hasher *security.PasswordHasher,
	eventPublisher events.EventPublisher,
	recommendationCache *cache.CacheHelper,
	logger *slog.Logger,
	validator *validator.Validator,
) UserService {
	return &userService{
		repo:                repo,
		tokenManager:        tokenManager,
		hasher:              hasher,
		eventPublisher:      eventPublisher,
		recommendationCache: recommendationCache,
		logger:              logger,
		validator:           validator,
	}
}

func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	// Password length and email shape are checked before any database access.
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)

	s.publishEvent(ctx, events.Event{
		Type: events.EventUserRegistered,
		Data: map[string]any{"user_id": user.ID, "role": user.Role},
	})

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.DisabilityDetails != nil {
		user.DisabilityDetails = req.DisabilityDetails
	}
	if len(req.AccessibilityPrefs) > 0 {
		user.AccessibilityPrefs = datatypes.JSON(req.AccessibilityPrefs)
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// Profile text feeds the recommendation prompt; cached replies for this
	// user are stale now.
	cache.SafeInvalidatePattern(ctx, s.recommendationCache, fmt.Sprintf("user:%s:*", userID))

	s.logger.Info("profile updated", "user_id", userID)

	return user, nil
}

func (s *userService) UpdateProfilePicture(ctx context.Context, userID, pictureURL string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.ProfilePictureURL = &pictureURL
	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	return user, nil
}

func (s *userService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.Type, "error", err)
	}
}
