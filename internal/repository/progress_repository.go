package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gcsepal-backend/internal/model"
)

type ProgressRepository interface {
	// UpsertLessonProgress creates the row on first interaction and updates
	// it afterwards. Time spent accumulates; a completed row never regresses
	// to in_progress.
	UpsertLessonProgress(userID, lessonID, courseID uuid.UUID, status string, timeSpent int, score *float64) (*model.LessonProgress, error)
	CountCompleted(userID, courseID uuid.UUID) (int64, error)
	ListByUserAndCourse(userID, courseID uuid.UUID) ([]model.LessonProgress, error)
	ListByUser(userID uuid.UUID) ([]model.LessonProgress, error)
	RecordSession(session *model.StudySession) error
	SessionsSince(userID uuid.UUID, since time.Time) ([]model.StudySession, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) UpsertLessonProgress(userID, lessonID, courseID uuid.UUID, status string, timeSpent int, score *float64) (*model.LessonProgress, error) {
	var row model.LessonProgress
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.LessonProgress{
				UserID:   userID,
				LessonID: lessonID,
				CourseID: courseID,
				Status:   model.ProgressStatusInProgress,
			}
			applyProgressUpdate(&row, status, timeSpent, score)
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		applyProgressUpdate(&row, status, timeSpent, score)
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func applyProgressUpdate(row *model.LessonProgress, status string, timeSpent int, score *float64) {
	row.TimeSpent += timeSpent
	if score != nil {
		row.Score = score
	}
	if row.Status != model.ProgressStatusCompleted && status == model.ProgressStatusCompleted {
		now := time.Now()
		row.Status = model.ProgressStatusCompleted
		row.CompletedAt = &now
	}
}

func (r *progressRepository) CountCompleted(userID, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.ProgressStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *progressRepository) ListByUserAndCourse(userID, courseID uuid.UUID) ([]model.LessonProgress, error) {
	var rows []model.LessonProgress
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error
	return rows, err
}

func (r *progressRepository) ListByUser(userID uuid.UUID) ([]model.LessonProgress, error) {
	var rows []model.LessonProgress
	err := r.db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (r *progressRepository) RecordSession(session *model.StudySession) error {
	return r.db.Create(session).Error
}

func (r *progressRepository) SessionsSince(userID uuid.UUID, since time.Time) ([]model.StudySession, error) {
	var sessions []model.StudySession
	err := r.db.Where("user_id = ? AND started_at >= ?", userID, since).
		Order("started_at ASC").Find(&sessions).Error
	return sessions, err
}
