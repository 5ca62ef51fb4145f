package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/utilities"
)

type progressFixture struct {
	svc            ProgressService
	bus            *utilities.EventBus
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	courseRepo     repository.CourseRepository
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	db := newTestDB(t)
	bus := utilities.NewEventBus()
	f := &progressFixture{
		bus:            bus,
		enrollmentRepo: repository.NewEnrollmentRepository(db),
		progressRepo:   repository.NewProgressRepository(db),
		courseRepo:     repository.NewCourseRepository(db),
	}
	f.svc = NewProgressService(f.progressRepo, f.enrollmentRepo, f.courseRepo, bus)
	t.Cleanup(bus.Drain)
	return f
}

func TestCompletionPercentageRounds(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 1, 3)
	user := seedUserFor(t, f)
	enrollment, err := f.enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	completeLesson(t, f, user.ID, course, 0)
	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)

	pct, err := f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)
	assert.Equal(t, 33, pct)

	completeLesson(t, f, user.ID, course, 1)
	pct, err = f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)
	assert.Equal(t, 67, pct, "2 of 3 rounds up")
}

func TestCompletionEmptyCourseIsZero(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 0, 0)
	user := seedUserFor(t, f)
	enrollment, err := f.enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)

	pct, err := f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
}

func TestCompletionCorrectsDriftedCacheInBackground(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 1, 4)
	user := seedUserFor(t, f)
	enrollment, err := f.enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	completeLesson(t, f, user.ID, course, 0)

	// Force the cached value far away from the actual 25%.
	require.NoError(t, f.enrollmentRepo.UpdateProgress(enrollment.ID, 80))
	enrollment, err = f.enrollmentRepo.GetByUserAndCourse(user.ID, course.ID)
	require.NoError(t, err)

	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)

	pct, err := f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)
	assert.Equal(t, 25, pct, "returned value is always the fresh one")

	f.bus.Drain()
	corrected, err := f.enrollmentRepo.GetByUserAndCourse(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, corrected.Progress, "cache corrected off the request path")
}

func TestCompletionToleratesOnePointDrift(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 1, 3)
	user := seedUserFor(t, f)
	enrollment, err := f.enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	completeLesson(t, f, user.ID, course, 0)

	// Cache the rounded-down neighbor of 33.
	require.NoError(t, f.enrollmentRepo.UpdateProgress(enrollment.ID, 34))
	enrollment, err = f.enrollmentRepo.GetByUserAndCourse(user.ID, course.ID)
	require.NoError(t, err)

	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)

	_, err = f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)

	f.bus.Drain()
	after, err := f.enrollmentRepo.GetByUserAndCourse(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 34, after.Progress, "off-by-one drift is left alone")
}

func TestCompletionDropsWhenLessonsAdded(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 1, 2)
	user := seedUserFor(t, f)
	enrollment, err := f.enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	completeLesson(t, f, user.ID, course, 0)
	completeLesson(t, f, user.ID, course, 1)

	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)
	pct, err := f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)
	require.Equal(t, 100, pct)

	// Instructor publishes a new lesson.
	require.NoError(t, f.courseRepo.CreateLesson(&model.Lesson{
		ChapterID: tree.Chapters[0].ID,
		Title:     "New lesson",
		Order:     3,
	}))

	tree, err = f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)
	pct, err = f.svc.Completion(user.ID, tree, enrollment)
	require.NoError(t, err)
	assert.Equal(t, 67, pct, "percentage reflects the new denominator")
}

func TestTrackMarksEnrollmentCompleted(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 1, 1)
	user := seedUserFor(t, f)
	_, err := f.enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)

	row, pct, err := f.svc.Track(user.ID, tree.Chapters[0].Lessons[0].ID, model.ProgressStatusCompleted, 120, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
	assert.Equal(t, model.ProgressStatusCompleted, row.Status)

	enrollment, err := f.enrollmentRepo.GetByUserAndCourse(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusCompleted, enrollment.Status)
	assert.Equal(t, 100, enrollment.Progress)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestTrackRejectsUnenrolledUser(t *testing.T) {
	f := newProgressFixture(t)

	course := seedCourseWith(t, f, 1, 1)
	user := seedUserFor(t, f)

	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Track(user.ID, tree.Chapters[0].Lessons[0].ID, model.ProgressStatusInProgress, 30, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// Helpers shared by the progress tests.

func seedCourseWith(t *testing.T, f *progressFixture, chapters, lessonsPerChapter int) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:  "GCSE Physics",
		Status: model.CourseStatusPublished,
	}
	for c := 0; c < chapters; c++ {
		chapter := model.Chapter{Title: "Chapter", Order: c + 1}
		for l := 0; l < lessonsPerChapter; l++ {
			chapter.Lessons = append(chapter.Lessons, model.Lesson{Title: "Lesson", Order: l + 1})
		}
		course.Chapters = append(course.Chapters, chapter)
	}
	require.NoError(t, f.courseRepo.CreateCourse(course))
	return course
}

func seedUserFor(t *testing.T, f *progressFixture) *model.User {
	t.Helper()
	// The progress paths never read the user row; a bare id is enough.
	return &model.User{ID: uuid.New()}
}

func completeLesson(t *testing.T, f *progressFixture, userID uuid.UUID, course *model.Course, index int) {
	t.Helper()
	tree, err := f.courseRepo.GetCourseTree(course.ID)
	require.NoError(t, err)
	flat := FlattenLessons(tree)
	require.Greater(t, len(flat), index)
	_, err = f.progressRepo.UpsertLessonProgress(userID, flat[index].ID, course.ID, model.ProgressStatusCompleted, 60, nil)
	require.NoError(t, err)
}
