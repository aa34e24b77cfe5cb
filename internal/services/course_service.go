package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rakitcita/platform-service/internal/events"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/validator"
)

type courseService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewCourseService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) CourseService {
	return &courseService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CourseCreateRequest, actor Actor) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if actor.Role != models.RoleMentor && actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.ID, "", "course", "create", "requires mentor or admin role")
	}

	level := models.LevelAll
	if req.Level != "" {
		level = models.CourseLevel(req.Level)
	}

	course := &models.Course{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: actor.ID,
		Category:     req.Category,
		Level:        level,
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("course created", "course_id", course.ID, "instructor_id", actor.ID)

	s.publishEvent(ctx, events.Event{
		Type: events.EventCourseCreated,
		Data: map[string]any{"course_id": course.ID, "instructor_id": actor.ID},
	})

	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	count, err := s.repo.Enrollment().CountByCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return &CourseResponse{Course: course, EnrolledCount: count}, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *CourseUpdateRequest, actor Actor) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.getOwnedCourse(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Category != nil {
		course.Category = req.Category
	}
	if req.Level != nil {
		course.Level = models.CourseLevel(*req.Level)
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("course updated", "course_id", id, "user_id", actor.ID)

	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id string, actor Actor) error {
	if _, err := s.getOwnedCourse(ctx, id, actor); err != nil {
		return err
	}

	if err := s.repo.Course().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.Info("course deleted", "course_id", id, "user_id", actor.ID)

	return nil
}

func (s *courseService) SetThumbnail(ctx context.Context, id, thumbnailURL string, actor Actor) (*models.Course, error) {
	course, err := s.getOwnedCourse(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	course.ThumbnailURL = &thumbnailURL
	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update thumbnail: %w", err)
	}

	return course, nil
}

// getOwnedCourse fetches the course and checks mutation rights. Denial is
// reported as not-found rather than forbidden so non-owners cannot probe
// which course ids exist.
func (s *courseService) getOwnedCourse(ctx context.Context, id string, actor Actor) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if course.InstructorID != actor.ID && !actor.IsPlatformAdmin() {
		return nil, ErrCourseNotFound
	}

	return course, nil
}

func (s *courseService) List(ctx context.Context, req *ListCoursesRequest) (*CourseListResponse, error) {
	filters := repositories.CourseFilters{Search: req.Search}
	if req.Category != "" {
		filters.Category = &req.Category
	}
	if req.Level != "" {
		level := models.CourseLevel(req.Level)
		if !level.Valid() {
			return nil, NewBusinessRuleError("course_level", "level must be one of beginner, intermediate, advanced, all")
		}
		filters.Level = &level
	}

	pagination := models.NewPagination(req.Page, req.Limit, 0)
	filters.Limit = pagination.Limit
	filters.Offset = pagination.Offset()

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return &CourseListResponse{
		Courses:    courses,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// ===== ENROLLMENT =====

func (s *courseService) Enroll(ctx context.Context, courseID, userID string) (*EnrollmentResponse, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	var response *EnrollmentResponse
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		existing, err := txRepo.Enrollment().Get(ctx, userID, courseID)
		if err == nil {
			response = &EnrollmentResponse{Enrollment: existing, AlreadyEnrolled: true}
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}

		enrollment := &models.Enrollment{
			UserID:   userID,
			CourseID: courseID,
			Progress: 0,
		}
		if err := txRepo.Enrollment().Create(ctx, enrollment); err != nil {
			return err
		}
		response = &EnrollmentResponse{Enrollment: enrollment}
		return nil
	})
	if err != nil {
		// A concurrent first-join can still win the insert. Translate the
		// lost race into the idempotent outcome instead of a conflict.
		if repositories.IsDuplicateKeyError(err) {
			existing, getErr := s.repo.Enrollment().Get(ctx, userID, courseID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing enrollment: %w", getErr)
			}
			return &EnrollmentResponse{Enrollment: existing, AlreadyEnrolled: true}, nil
		}
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	if !response.AlreadyEnrolled {
		s.logger.Info("user enrolled", "course_id", courseID, "user_id", userID)
		s.publishEvent(ctx, events.Event{
			Type: events.EventCourseEnrolled,
			Data: map[string]any{"course_id": courseID, "user_id": userID},
		})
	}

	return response, nil
}

func (s *courseService) UpdateProgress(ctx context.Context, courseID, userID string, progress int) (*models.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, NewBusinessRuleError("progress_range", "progress must be between 0 and 100")
	}

	enrollment, err := s.repo.Enrollment().Get(ctx, userID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	completed := progress == 100 && enrollment.Progress != 100

	enrollment.Progress = progress
	if progress == 100 {
		if enrollment.CompletedAt == nil {
			now := time.Now().UTC()
			enrollment.CompletedAt = &now
		}
	} else {
		enrollment.CompletedAt = nil
	}

	if err := s.repo.Enrollment().Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	if completed {
		s.logger.Info("course completed", "course_id", courseID, "user_id", userID)
		s.publishEvent(ctx, events.Event{
			Type: events.EventCourseCompleted,
			Data: map[string]any{"course_id": courseID, "user_id": userID},
		})
	}

	return enrollment, nil
}

func (s *courseService) ListEnrolled(ctx context.Context, userID string, page, limit int) (*EnrollmentListResponse, error) {
	pagination := models.NewPagination(page, limit, 0)

	enrollments, total, err := s.repo.Enrollment().ListByUser(ctx, userID, repositories.PageFilters{
		Limit:  pagination.Limit,
		Offset: pagination.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return &EnrollmentListResponse{
		Enrollments: enrollments,
		Pagination:  models.NewPagination(page, limit, total),
	}, nil
}

func (s *courseService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.Type, "error", err)
	}
}
