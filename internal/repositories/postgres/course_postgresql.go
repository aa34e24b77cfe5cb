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

type courseRepository struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &courseRepository{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.CourseCacheConfig.Prefix),
	}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%s", id)

	var cached models.Course
	if err := r.cacheHelper.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		First(&course, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get course by id")
	}

	r.cacheHelper.Set(ctx, cacheKey, &course, 5*time.Minute)
	return &course, nil
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return handleDBError(err, "update course")
	}
	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", course.ID))
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete course")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete course")
	}
	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%s", id))
	return nil
}

func (r *courseRepository) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Course{})
	query = r.applyCourseFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	query = applyPagination(query.Preload("Instructor").Order("created_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}

	return courses, total, nil
}

func (r *courseRepository) applyCourseFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}
