package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

func newEnrollmentFixture(t *testing.T) (EnrollmentService, *progressFixture) {
	t.Helper()
	f := newProgressFixture(t)
	return NewEnrollmentService(f.enrollmentRepo, f.courseRepo, f.svc), f
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	svc, f := newEnrollmentFixture(t)

	draft := &model.Course{Title: "Draft course", Status: model.CourseStatusDraft}
	require.NoError(t, f.courseRepo.CreateCourse(draft))

	_, err := svc.Enroll(seedUserFor(t, f).ID, draft.ID)
	assert.ErrorIs(t, err, ErrCourseNotEnrollable)

	archived := &model.Course{Title: "Archived course", Status: model.CourseStatusArchived}
	require.NoError(t, f.courseRepo.CreateCourse(archived))

	_, err = svc.Enroll(seedUserFor(t, f).ID, archived.ID)
	assert.ErrorIs(t, err, ErrCourseNotEnrollable)
}

func TestEnrollPropagatesDuplicateError(t *testing.T) {
	svc, f := newEnrollmentFixture(t)

	course := seedCourseWith(t, f, 1, 2)
	user := seedUserFor(t, f)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyEnrolled)
}

func TestMyEnrollmentsReturnsFreshPercentages(t *testing.T) {
	svc, f := newEnrollmentFixture(t)

	course := seedCourseWith(t, f, 1, 2)
	user := seedUserFor(t, f)

	_, err := svc.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	completeLesson(t, f, user.ID, course, 0)

	views, err := svc.MyEnrollments(user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, course.ID, views[0].Course.ID)
	assert.Equal(t, 50, views[0].Progress, "computed from lesson rows, not the cached column")

	f.bus.Drain()
}
