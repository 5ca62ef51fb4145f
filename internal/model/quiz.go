package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz attaches to a lesson, chapter, or course; exactly one of the three
// parent ids is set.
type Quiz struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string     `json:"title" gorm:"not null"`
	LessonID     *uuid.UUID `json:"lesson_id,omitempty" gorm:"type:uuid;index"`
	ChapterID    *uuid.UUID `json:"chapter_id,omitempty" gorm:"type:uuid;index"`
	CourseID     *uuid.UUID `json:"course_id,omitempty" gorm:"type:uuid;index"`
	PassingScore float64    `json:"passing_score" gorm:"default:60"`
	Questions    []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Question stores correctness by option position, not by option text,
// so duplicate option strings stay unambiguous.
type Question struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	QuizID       uuid.UUID      `json:"quiz_id" gorm:"type:uuid;index;not null"`
	Text         string         `json:"text" gorm:"not null"`
	Type         string         `json:"type" gorm:"default:'multiple_choice'"`
	Order        int            `json:"order" gorm:"column:sort_order"`
	CorrectIndex int            `json:"correct_index"`
	Options      []AnswerOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type AnswerOption struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;index;not null"`
	Text       string    `json:"text" gorm:"not null"`
	Position   int       `json:"position"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

func (o *AnswerOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// QuizAttempt records one submission; Answers holds the normalized
// per-question selections as JSON.
type QuizAttempt struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;index;not null"`
	QuizID    uuid.UUID      `json:"quiz_id" gorm:"type:uuid;index;not null"`
	Score     float64        `json:"score"`
	Passed    bool           `json:"passed"`
	TimeSpent int            `json:"time_spent"`
	Answers   datatypes.JSON `json:"answers"`
	CreatedAt time.Time      `json:"created_at"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AttemptAnswer is the element shape serialized into QuizAttempt.Answers.
type AttemptAnswer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedIndex int       `json:"selected_index"`
	Correct       bool      `json:"correct"`
}
