package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rakitcita/platform-service/internal/cache"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
)

type userRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &userRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.UserCacheConfig.Prefix),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)

	var cached models.User
	if err := r.cacheHelper.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	r.cacheHelper.Set(ctx, cacheKey, &user, 5*time.Minute)
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	// Never cached. Login reads the password hash and must see fresh rows.
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}
	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", user.ID))
	return nil
}

func (r *userRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}
