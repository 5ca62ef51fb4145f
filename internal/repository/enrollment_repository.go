package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gcsepal-backend/internal/model"
)

// ErrAlreadyEnrolled is returned when a second enrollment is attempted for
// the same (user, course) pair.
var ErrAlreadyEnrolled = errors.New("already enrolled in this course")

type EnrollmentRepository interface {
	// Enroll creates the enrollment and increments the course counter in one
	// transaction. Enrolling twice returns ErrAlreadyEnrolled and leaves the
	// counter untouched.
	Enroll(userID, courseID uuid.UUID) (*model.Enrollment, error)
	GetByUserAndCourse(userID, courseID uuid.UUID) (*model.Enrollment, error)
	ListByUser(userID uuid.UUID) ([]model.Enrollment, error)
	UpdateProgress(id uuid.UUID, progress int) error
	MarkCompleted(id uuid.UUID) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Enroll(userID, courseID uuid.UUID) (*model.Enrollment, error) {
	enrollment := &model.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   model.EnrollmentStatusActive,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
		if err == nil {
			return ErrAlreadyEnrolled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Course{}).Where("id = ?", courseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) GetByUserAndCourse(userID, courseID uuid.UUID) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListByUser(userID uuid.UUID) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) UpdateProgress(id uuid.UUID, progress int) error {
	return r.db.Model(&model.Enrollment{}).Where("id = ?", id).
		UpdateColumn("progress", progress).Error
}

func (r *enrollmentRepository) MarkCompleted(id uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.Enrollment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.EnrollmentStatusCompleted,
			"progress":     100,
			"completed_at": &now,
		}).Error
}
