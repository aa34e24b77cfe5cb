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

type communityRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewCommunityPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CommunityRepository {
	return &communityRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.CommunityCacheConfig.Prefix),
	}
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		return handleDBError(err, "create community")
	}
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	cacheKey := fmt.Sprintf("id:%s", id)

	var cached models.Community
	if err := r.cacheHelper.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var community models.Community
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		First(&community, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get community by id")
	}

	r.cacheHelper.Set(ctx, cacheKey, &community, 5*time.Minute)
	return &community, nil
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		return handleDBError(err, "update community")
	}
	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", community.ID))
	return nil
}

func (r *communityRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Community{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete community")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete community")
	}
	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", id))
	return nil
}

func (r *communityRepository) List(ctx context.Context, filters repositories.CommunityFilters) ([]*models.Community, int64, error) {
	var communities []*models.Community
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Community{})
	if filters.CreatorID != nil {
		query = query.Where("creator_id = ?", *filters.CreatorID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count communities")
	}

	query = applyPagination(query.Preload("Creator").Order("created_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&communities).Error; err != nil {
		return nil, 0, handleDBError(err, "list communities")
	}

	return communities, total, nil
}
