package migration

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Checkpoint persists per-phase migration state so an interrupted run can
// resume without redoing committed phases.
type Checkpoint struct {
	ID           uint   `gorm:"primaryKey"`
	Phase        string `gorm:"uniqueIndex;not null"`
	LastSourceID string
	Migrated     int64
	CompletedAt  *time.Time
	UpdatedAt    time.Time
}

func (Checkpoint) TableName() string { return "migration_checkpoints" }

func loadCheckpoint(db *gorm.DB, phase string) (*Checkpoint, error) {
	var cp Checkpoint
	err := db.Where("phase = ?", phase).First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cp = Checkpoint{Phase: phase}
		if err := db.Create(&cp).Error; err != nil {
			return nil, err
		}
		return &cp, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func saveCheckpoint(db *gorm.DB, cp *Checkpoint) error {
	return db.Save(cp).Error
}

func completeCheckpoint(db *gorm.DB, cp *Checkpoint) error {
	now := time.Now()
	cp.CompletedAt = &now
	return db.Save(cp).Error
}
