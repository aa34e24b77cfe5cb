package models

import "time"

// Enrollment joins a user to a course. The composite primary key makes the
// join idempotent at the schema level: a racing second insert fails with a
// unique violation instead of creating a duplicate row.
type Enrollment struct {
	UserID   string `json:"user_id" gorm:"primaryKey;size:36"`
	CourseID string `json:"course_id" gorm:"primaryKey;size:36"`

	// Progress is a percentage in [0,100]. CompletedAt is set the first
	// time progress reaches 100.
	Progress    int        `json:"progress" gorm:"not null;default:0"`
	EnrolledAt  time.Time  `json:"enrolled_at" gorm:"autoCreateTime"`
	CompletedAt *time.Time `json:"completed_at"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "user_courses"
}
