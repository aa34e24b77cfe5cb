package repositories

import (
	"context"

	"github.com/rakitcita/platform-service/internal/models"
)

// ===== FILTERS =====

// PageFilters is the plain limit/offset pair used by list queries that
// have no additional predicates. A Limit of 0 means "no limit".
type PageFilters struct {
	Limit  int
	Offset int
}

type UserFilters struct {
	Search string
	Role   *models.UserRole
	Limit  int
	Offset int
}

type CourseFilters struct {
	Category     *string
	Level        *models.CourseLevel
	Search       string
	InstructorID *string
	Limit        int
	Offset       int
}

type CommunityFilters struct {
	Search    string
	CreatorID *string
	Limit     int
	Offset    int
}

// ===== REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
}

type EnrollmentRepository interface {
	Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	ListByUser(ctx context.Context, userID string, filters PageFilters) ([]*models.Enrollment, int64, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
}

type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id string) (*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters CommunityFilters) ([]*models.Community, int64, error)
}

type MembershipRepository interface {
	Get(ctx context.Context, userID, communityID string) (*models.Membership, error)
	Create(ctx context.Context, membership *models.Membership) error
	UpdateRole(ctx context.Context, userID, communityID string, role models.CommunityRole) error
	Delete(ctx context.Context, userID, communityID string) error

	// ListMembers orders by role rank (admin, moderator, member) then
	// name ascending. The tie-break is fixed, not configurable.
	ListMembers(ctx context.Context, communityID string, filters PageFilters) ([]*models.Membership, int64, error)
	ListByUser(ctx context.Context, userID string, filters PageFilters) ([]*models.Membership, int64, error)

	CountMembers(ctx context.Context, communityID string) (int64, error)
	CountAdmins(ctx context.Context, communityID string) (int64, error)

	// CountAdminsForUpdate locks the community's admin membership rows
	// (SELECT ... FOR UPDATE) so a concurrent demotion/removal cannot
	// slip past the last-admin check. Only valid inside WithTransaction.
	CountAdminsForUpdate(ctx context.Context, communityID string) (int64, error)
}
