package validator

import "encoding/json"

// RegisterRequest creates a new user account. Password length is checked
// here, before any database access.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=user mentor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdateRequest struct {
	Name               *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Bio                *string         `json:"bio" validate:"omitempty,max=2000"`
	DisabilityDetails  *string         `json:"disabilityDetails" validate:"omitempty,max=2000"`
	AccessibilityPrefs json.RawMessage `json:"accessibilityPrefs"`
}

// ===== COURSES =====

type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Level       string  `json:"level" validate:"omitempty,course_level"`
}

type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Level       *string `json:"level" validate:"omitempty,course_level"`
}

// ProgressUpdateRequest uses a pointer so a progress of 0 is distinguishable
// from a missing field.
type ProgressUpdateRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

// ===== COMMUNITIES =====

type CommunityCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type CommunityUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type MemberRoleUpdateRequest struct {
	Role string `json:"role" validate:"required,community_role"`
}

// ===== RECOMMENDATIONS =====

type RecommendationRequest struct {
	Bio               string `json:"bio" validate:"omitempty,max=2000"`
	DisabilityDetails string `json:"disabilityDetails" validate:"omitempty,max=2000"`
}
