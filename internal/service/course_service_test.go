package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

func navCourse() (*model.Course, []uuid.UUID) {
	ids := make([]uuid.UUID, 4)
	for i := range ids {
		ids[i] = uuid.New()
	}
	// Chapters and lessons deliberately out of order to prove sorting.
	return &model.Course{
		Chapters: []model.Chapter{
			{
				Order: 2,
				Lessons: []model.Lesson{
					{ID: ids[3], Title: "c2l2", Order: 2},
					{ID: ids[2], Title: "c2l1", Order: 1},
				},
			},
			{
				Order: 1,
				Lessons: []model.Lesson{
					{ID: ids[0], Title: "c1l1", Order: 1},
					{ID: ids[1], Title: "c1l2", Order: 2},
				},
			},
		},
	}, ids
}

func TestFlattenLessonsOrdersByChapterThenLesson(t *testing.T) {
	course, ids := navCourse()

	flat := FlattenLessons(course)
	require.Len(t, flat, 4)
	for i, id := range ids {
		assert.Equal(t, id, flat[i].ID, "position %d", i)
	}
}

func TestNeighbors(t *testing.T) {
	course, ids := navCourse()

	t.Run("first lesson has no previous", func(t *testing.T) {
		previous, next := Neighbors(course, ids[0])
		assert.Nil(t, previous)
		require.NotNil(t, next)
		assert.Equal(t, ids[1], next.ID)
	})

	t.Run("crosses chapter boundary", func(t *testing.T) {
		previous, next := Neighbors(course, ids[1])
		require.NotNil(t, previous)
		require.NotNil(t, next)
		assert.Equal(t, ids[0], previous.ID)
		assert.Equal(t, ids[2], next.ID, "next comes from the following chapter")
	})

	t.Run("last lesson has no next", func(t *testing.T) {
		previous, next := Neighbors(course, ids[3])
		require.NotNil(t, previous)
		assert.Equal(t, ids[2], previous.ID)
		assert.Nil(t, next)
	})

	t.Run("unknown lesson yields two nils", func(t *testing.T) {
		previous, next := Neighbors(course, uuid.New())
		assert.Nil(t, previous)
		assert.Nil(t, next)
	})
}

func TestCreateCourseDefaultsToDraft(t *testing.T) {
	db := newTestDB(t)
	svc := NewCourseService(repository.NewCourseRepository(db))

	course := &model.Course{Title: "GCSE Chemistry"}
	require.NoError(t, svc.CreateCourse(course))
	assert.Equal(t, model.CourseStatusDraft, course.Status)

	err := svc.CreateCourse(&model.Course{})
	assert.Error(t, err, "title is required")
}
