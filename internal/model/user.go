package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ExternalID   string         `json:"external_id" gorm:"uniqueIndex"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	Password     string         `json:"password,omitempty"` // Excluded from responses after auth
	Name         string         `json:"name"`
	Role         string         `json:"role" gorm:"default:'student'"`
	Preferences  datatypes.JSON `json:"preferences"`
	TokenVersion int            `json:"-" gorm:"default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	// Locally registered accounts have no identity-provider id; the
	// column is unique, so fall back to our own id.
	if u.ExternalID == "" {
		u.ExternalID = u.ID.String()
	}
	return nil
}

// IsStaff reports whether the user may author courses or view admin views.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeacher
}
