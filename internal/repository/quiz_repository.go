package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gcsepal-backend/internal/model"
)

// AttemptStats summarizes quiz attempts for the dashboards.
type AttemptStats struct {
	TotalAttempts int64   `json:"total_attempts"`
	PassedCount   int64   `json:"passed_count"`
	AverageScore  float64 `json:"average_score"`
}

type QuizRepository interface {
	CreateQuiz(quiz *model.Quiz) error
	GetQuizByID(id uuid.UUID) (*model.Quiz, error)
	ListByCourse(courseID uuid.UUID) ([]model.Quiz, error)
	SaveAttempt(attempt *model.QuizAttempt) error
	AttemptsByUser(userID uuid.UUID) ([]model.QuizAttempt, error)
	Stats() (*AttemptStats, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) CreateQuiz(quiz *model.Quiz) error {
	return r.db.Create(quiz).Error
}

func (r *quizRepository) GetQuizByID(id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) ListByCourse(courseID uuid.UUID) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.db.Where("course_id = ?", courseID).Find(&quizzes).Error
	return quizzes, err
}

func (r *quizRepository) SaveAttempt(attempt *model.QuizAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *quizRepository) AttemptsByUser(userID uuid.UUID) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *quizRepository) Stats() (*AttemptStats, error) {
	var stats AttemptStats
	if err := r.db.Model(&model.QuizAttempt{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.QuizAttempt{}).Where("passed = ?", true).
		Count(&stats.PassedCount).Error; err != nil {
		return nil, err
	}
	if stats.TotalAttempts > 0 {
		var avg *float64
		if err := r.db.Model(&model.QuizAttempt{}).
			Select("AVG(score)").Scan(&avg).Error; err != nil {
			return nil, err
		}
		if avg != nil {
			stats.AverageScore = *avg
		}
	}
	return &stats, nil
}
