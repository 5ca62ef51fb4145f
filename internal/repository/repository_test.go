package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gcsepal-backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Chapter{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.LessonProgress{},
		&model.StudySession{},
		&model.Quiz{},
		&model.Question{},
		&model.AnswerOption{},
		&model.QuizAttempt{},
	))
	return db
}

func seedPublishedCourse(t *testing.T, db *gorm.DB) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:  "GCSE Biology",
		Status: model.CourseStatusPublished,
		Chapters: []model.Chapter{
			{Title: "Cells", Order: 1, Lessons: []model.Lesson{
				{Title: "Cell structure", Order: 1},
				{Title: "Microscopy", Order: 2},
			}},
		},
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func newUserID() uuid.UUID { return uuid.New() }
