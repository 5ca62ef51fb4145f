// Package legacy declares the old denormalized schema read by the
// migration batch job. Rows carry text primary keys and JSON blobs that
// the new schema normalizes into first-class tables.
package legacy

import "time"

type User struct {
	ID        string `gorm:"primaryKey"`
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

func (User) TableName() string { return "legacy_users" }

type Course struct {
	ID              string `gorm:"primaryKey"`
	Title           string
	Description     string
	Subject         string
	Level           string
	Difficulty      string
	InstructorID    string
	Price           float64
	Status          string
	EnrollmentCount int
	Rating          float64
	CreatedAt       time.Time
}

func (Course) TableName() string { return "legacy_courses" }

type Chapter struct {
	ID       string `gorm:"primaryKey"`
	CourseID string `gorm:"index"`
	Title    string
	Position int
	Duration int
}

func (Chapter) TableName() string { return "legacy_chapters" }

type Lesson struct {
	ID        string `gorm:"primaryKey"`
	ChapterID string `gorm:"index"`
	Title     string
	Position  int
	Content   string
	VideoURL  string
	Duration  int
}

func (Lesson) TableName() string { return "legacy_lessons" }

type Quiz struct {
	ID           string `gorm:"primaryKey"`
	LessonID     *string
	ChapterID    *string
	CourseID     *string
	Title        string
	PassingScore float64
}

func (Quiz) TableName() string { return "legacy_quizzes" }

// Question keeps its options as a JSON-encoded string array plus the
// correct answer's text; the migrator explodes this into answer_option
// rows with index-based correctness.
type Question struct {
	ID            string `gorm:"primaryKey"`
	QuizID        string `gorm:"index"`
	Text          string
	Type          string
	Position      int
	Options       string // JSON array of option strings
	CorrectAnswer string
}

func (Question) TableName() string { return "legacy_questions" }

type Enrollment struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index"`
	CourseID   string `gorm:"index"`
	Status     string
	Progress   int
	EnrolledAt time.Time
}

func (Enrollment) TableName() string { return "legacy_enrollments" }

// Progress is the unified progress table: LessonID is null for rows that
// tracked course-level progress in the old schema.
type Progress struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	CourseID    string `gorm:"index"`
	LessonID    *string
	Status      string
	TimeSpent   int
	Score       *float64
	StartedAt   time.Time
	CompletedAt *time.Time
}

func (Progress) TableName() string { return "legacy_progress" }

type QuizAttempt struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	QuizID    string `gorm:"index"`
	Score     float64
	Passed    bool
	TimeSpent int
	Answers   string // JSON blob: [{"question_id": "...", "answer": "..."}]
	CreatedAt time.Time
}

func (QuizAttempt) TableName() string { return "legacy_quiz_attempts" }
