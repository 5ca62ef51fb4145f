package service

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

// seedCourse creates a published course with the given chapter/lesson
// shape and returns it with the tree loaded.
func seedCourse(t *testing.T, db *gorm.DB, chapters, lessonsPerChapter int) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:        "GCSE Maths",
		Description:  "Foundation and higher tier revision",
		Subject:      "maths",
		Level:        "gcse",
		Status:       model.CourseStatusPublished,
		InstructorID: uuid.New(),
	}
	for c := 0; c < chapters; c++ {
		chapter := model.Chapter{Title: "Chapter", Order: c + 1}
		for l := 0; l < lessonsPerChapter; l++ {
			chapter.Lessons = append(chapter.Lessons, model.Lesson{
				Title: "Lesson",
				Order: l + 1,
			})
		}
		course.Chapters = append(course.Chapters, chapter)
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func seedUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()
	user := &model.User{
		ExternalID: uuid.NewString(),
		Email:      uuid.NewString() + "@example.com",
		Name:       "Test User",
		Role:       role,
		Password:   "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
