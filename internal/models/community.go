package models

import (
	"time"

	"gorm.io/gorm"
)

type CommunityRole string

const (
	CommunityMember    CommunityRole = "member"
	CommunityModerator CommunityRole = "moderator"
	CommunityAdmin     CommunityRole = "admin"
)

func (r CommunityRole) Valid() bool {
	switch r {
	case CommunityMember, CommunityModerator, CommunityAdmin:
		return true
	}
	return false
}

// Rank orders community roles for the member listing: admins first, then
// moderators, then members.
func (r CommunityRole) Rank() int {
	switch r {
	case CommunityAdmin:
		return 0
	case CommunityModerator:
		return 1
	default:
		return 2
	}
}

type Community struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description *string `json:"description" gorm:"size:5000"`
	CreatorID   string  `json:"creator_id" gorm:"not null;size:36;index"`
	BannerURL   *string `json:"banner_url" gorm:"size:500"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Community) TableName() string {
	return "communities"
}

// Membership joins a user to a community with an in-community role.
// Invariant: every community keeps at least one admin-role membership;
// the community service enforces this inside a locking transaction.
type Membership struct {
	UserID      string        `json:"user_id" gorm:"primaryKey;size:36"`
	CommunityID string        `json:"community_id" gorm:"primaryKey;size:36"`
	Role        CommunityRole `json:"role_in_community" gorm:"not null;default:member;size:20"`
	JoinedAt    time.Time     `json:"joined_at" gorm:"autoCreateTime"`

	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Community *Community `json:"community,omitempty" gorm:"foreignKey:CommunityID"`
}

func (Membership) TableName() string {
	return "user_communities"
}
