package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
)

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error; err != nil {
		return nil, handleDBError(err, "get enrollment")
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return handleDBError(err, "create enrollment")
	}
	return nil
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", enrollment.UserID, enrollment.CourseID).
		Updates(map[string]any{
			"progress":     enrollment.Progress,
			"completed_at": enrollment.CompletedAt,
		}).Error; err != nil {
		return handleDBError(err, "update enrollment")
	}
	return nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID string, filters repositories.PageFilters) ([]*models.Enrollment, int64, error) {
	var enrollments []*models.Enrollment
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count enrollments")
	}

	query = applyPagination(
		query.Preload("Course").Preload("Course.Instructor").Order("enrolled_at DESC"),
		filters.Limit, filters.Offset,
	)
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, handleDBError(err, "list enrollments")
	}

	return enrollments, total, nil
}

func (r *enrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count enrollments by course")
	}
	return count, nil
}
