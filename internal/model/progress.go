package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
)

const (
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)

// Enrollment links a user to a course. At most one row exists per
// (user, course) pair; Progress is a cached percentage that the
// aggregator corrects when it drifts.
type Enrollment struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_user_course;not null"`
	CourseID    uuid.UUID  `json:"course_id" gorm:"type:uuid;uniqueIndex:idx_user_course;not null"`
	Status      string     `json:"status" gorm:"default:'active'"`
	Progress    int        `json:"progress" gorm:"default:0"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	return nil
}

// LessonProgress records one user's interaction state with one lesson.
type LessonProgress struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_user_lesson;not null"`
	LessonID    uuid.UUID  `json:"lesson_id" gorm:"type:uuid;uniqueIndex:idx_user_lesson;not null"`
	CourseID    uuid.UUID  `json:"course_id" gorm:"type:uuid;index;not null"`
	Status      string     `json:"status" gorm:"default:'in_progress'"`
	TimeSpent   int        `json:"time_spent"` // seconds
	Score       *float64   `json:"score,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now()
	}
	return nil
}

// StudySession is a time-boxed record of study activity used for streak
// and analytics computation.
type StudySession struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;index;not null"`
	CourseID  *uuid.UUID `json:"course_id,omitempty" gorm:"type:uuid;index"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Duration  int        `json:"duration"` // seconds
	CreatedAt time.Time  `json:"created_at"`
}

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
