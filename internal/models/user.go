package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleMentor UserRole = "mentor"
	RoleAdmin  UserRole = "admin"
)

// Valid reports whether the role is one of the platform roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:36"`
	Name         string   `json:"name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;default:user;size:20"`

	// Profile info
	Bio               *string `json:"bio" gorm:"size:2000"`
	DisabilityDetails *string `json:"disability_details" gorm:"size:2000"`
	ProfilePictureURL *string `json:"profile_picture_url" gorm:"size:500"`

	// Accessibility settings kept as an opaque JSON document; the frontend
	// owns its shape.
	AccessibilityPrefs datatypes.JSON `json:"accessibility_prefs,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
