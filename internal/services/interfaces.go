package services

import (
	"context"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type CourseCreateRequest = validator.CourseCreateRequest
type CourseUpdateRequest = validator.CourseUpdateRequest
type CommunityCreateRequest = validator.CommunityCreateRequest
type CommunityUpdateRequest = validator.CommunityUpdateRequest
type MemberRoleUpdateRequest = validator.MemberRoleUpdateRequest
type RecommendationRequest = validator.RecommendationRequest

// Actor is the authenticated requester, as carried in the bearer token.
type Actor struct {
	ID   string
	Role models.UserRole
}

func (a Actor) IsPlatformAdmin() bool {
	return a.Role == models.RoleAdmin
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ListCoursesRequest struct {
	Category string
	Level    string
	Search   string
	Page     int
	Limit    int
}

type CourseResponse struct {
	*models.Course
	EnrolledCount int64 `json:"enrolled_count"`
}

type CourseListResponse struct {
	Courses    []*models.Course  `json:"courses"`
	Pagination models.Pagination `json:"pagination"`
}

// EnrollmentResponse reports whether the join created a new row. Joining
// twice returns the existing row with AlreadyEnrolled set.
type EnrollmentResponse struct {
	*models.Enrollment
	AlreadyEnrolled bool `json:"already_enrolled"`
}

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Pagination  models.Pagination    `json:"pagination"`
}

type ListCommunitiesRequest struct {
	Search string
	Page   int
	Limit  int
}

type CommunityResponse struct {
	*models.Community
	MemberCount int64 `json:"member_count"`
}

type CommunityListResponse struct {
	Communities []*models.Community `json:"communities"`
	Pagination  models.Pagination   `json:"pagination"`
}

type JoinResponse struct {
	*models.Membership
	AlreadyMember bool `json:"already_member"`
}

type MemberListResponse struct {
	Members    []*models.Membership `json:"members"`
	Pagination models.Pagination    `json:"pagination"`
}

type MembershipListResponse struct {
	Memberships []*models.Membership `json:"memberships"`
	Pagination  models.Pagination    `json:"pagination"`
}

type RecommendedCourse struct {
	Course *models.Course `json:"course"`
	Reason string         `json:"reason"`
}

type RecommendedCommunity struct {
	Community *models.Community `json:"community"`
	Reason    string            `json:"reason"`
}

type RecommendationResponse struct {
	Courses     []RecommendedCourse    `json:"courses"`
	Communities []RecommendedCommunity `json:"communities"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, userID, pictureURL string) (*models.User, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CourseCreateRequest, actor Actor) (*models.Course, error)
	GetByID(ctx context.Context, id string) (*CourseResponse, error)
	Update(ctx context.Context, id string, req *CourseUpdateRequest, actor Actor) (*models.Course, error)
	Delete(ctx context.Context, id string, actor Actor) error
	SetThumbnail(ctx context.Context, id, thumbnailURL string, actor Actor) (*models.Course, error)
	List(ctx context.Context, req *ListCoursesRequest) (*CourseListResponse, error)

	Enroll(ctx context.Context, courseID, userID string) (*EnrollmentResponse, error)
	UpdateProgress(ctx context.Context, courseID, userID string, progress int) (*models.Enrollment, error)
	ListEnrolled(ctx context.Context, userID string, page, limit int) (*EnrollmentListResponse, error)
}

type CommunityService interface {
	Create(ctx context.Context, req *CommunityCreateRequest, actor Actor) (*models.Community, error)
	GetByID(ctx context.Context, id string) (*CommunityResponse, error)
	Update(ctx context.Context, id string, req *CommunityUpdateRequest, actor Actor) (*models.Community, error)
	Delete(ctx context.Context, id string, actor Actor) error
	SetBanner(ctx context.Context, id, bannerURL string, actor Actor) (*models.Community, error)
	List(ctx context.Context, req *ListCommunitiesRequest) (*CommunityListResponse, error)

	Join(ctx context.Context, communityID, userID string) (*JoinResponse, error)
	Leave(ctx context.Context, communityID, userID string) error
	UpdateMemberRole(ctx context.Context, communityID, targetUserID string, role models.CommunityRole, actor Actor) (*models.Membership, error)
	RemoveMember(ctx context.Context, communityID, targetUserID string, actor Actor) error
	ListMembers(ctx context.Context, communityID string, page, limit int) (*MemberListResponse, error)
	ListByUser(ctx context.Context, userID string, page, limit int) (*MembershipListResponse, error)
}

type RecommendationService interface {
	Recommend(ctx context.Context, userID string, req *RecommendationRequest) (*RecommendationResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	User() UserService
	Course() CourseService
	Community() CommunityService
	Recommendation() RecommendationService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
