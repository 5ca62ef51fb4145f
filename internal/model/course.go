package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

const (
	VideoStatusProcessing = "processing"
	VideoStatusReady      = "ready"
	VideoStatusError      = "error"
)

type Course struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	Description     string    `json:"description"`
	Subject         string    `json:"subject" gorm:"index"`
	Level           string    `json:"level" gorm:"index"`
	Difficulty      string    `json:"difficulty"`
	InstructorID    uuid.UUID `json:"instructor_id" gorm:"type:uuid;index"`
	Price           float64   `json:"price"`
	Status          string    `json:"status" gorm:"default:'draft';index"`
	EnrollmentCount int       `json:"enrollment_count" gorm:"default:0"`
	Rating          float64   `json:"rating" gorm:"default:0"`
	Chapters        []Chapter `json:"chapters,omitempty" gorm:"foreignKey:CourseID"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TotalLessons counts lessons across all loaded chapters.
func (c *Course) TotalLessons() int {
	total := 0
	for _, ch := range c.Chapters {
		total += len(ch.Lessons)
	}
	return total
}

type Chapter struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CourseID  uuid.UUID `json:"course_id" gorm:"type:uuid;index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Order     int       `json:"order" gorm:"column:sort_order"`
	Duration  int       `json:"duration"` // minutes; authored or derived from lessons
	Lessons   []Lesson  `json:"lessons,omitempty" gorm:"foreignKey:ChapterID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ch *Chapter) BeforeCreate(tx *gorm.DB) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	return nil
}

type Lesson struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChapterID   uuid.UUID `json:"chapter_id" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Order       int       `json:"order" gorm:"column:sort_order"`
	Content     string    `json:"content"` // markdown
	Duration    int       `json:"duration"`
	VideoURL    string    `json:"video_url"`
	MuxAssetID  string    `json:"mux_asset_id" gorm:"index"`
	MuxUploadID string    `json:"mux_upload_id" gorm:"index"`
	VideoStatus string    `json:"video_status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
