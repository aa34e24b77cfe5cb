package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
	LevelAll          CourseLevel = "all"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAll:
		return true
	}
	return false
}

type Course struct {
	ID           string      `json:"id" gorm:"primaryKey;size:36"`
	Title        string      `json:"title" gorm:"not null;size:200"`
	Description  *string     `json:"description" gorm:"size:5000"`
	InstructorID string      `json:"instructor_id" gorm:"not null;size:36;index"`
	Category     *string     `json:"category" gorm:"size:100;index"`
	Level        CourseLevel `json:"level" gorm:"not null;default:all;size:20"`
	ThumbnailURL *string     `json:"thumbnail_url" gorm:"size:500"`

	Instructor *User `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}
