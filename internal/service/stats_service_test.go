package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcsepal-backend/internal/cache"
	"gcsepal-backend/internal/db"
	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

// countingStore wraps an in-memory cache and counts misses so the test can
// prove the second read is served from cache.
type countingStore struct {
	data   map[string][]byte
	misses int
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, ok := s.data[key]
	if !ok {
		s.misses++
	}
	return data, ok
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.data[key] = value
}

func TestAdminStatsAggregatesAndCaches(t *testing.T) {
	gdb := newTestDB(t)
	store := &countingStore{data: map[string][]byte{}}
	svc := NewStatsService(db.NewQueryExecutor(gdb), repository.NewQuizRepository(gdb), store)

	seedUser(t, gdb, model.RoleStudent)
	seedUser(t, gdb, model.RoleTeacher)
	course := seedCourse(t, gdb, 1, 1)
	draft := &model.Course{Title: "Draft", Status: model.CourseStatusDraft}
	require.NoError(t, gdb.Create(draft).Error)

	enrollmentRepo := repository.NewEnrollmentRepository(gdb)
	user := seedUser(t, gdb, model.RoleStudent)
	_, err := enrollmentRepo.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	stats, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.TotalCourses)
	assert.EqualValues(t, 1, stats.PublishedCourses)
	assert.EqualValues(t, 1, stats.TotalEnrollments)
	assert.EqualValues(t, 0, stats.QuizAttempts)
	assert.Equal(t, "no activity yet", stats.LastActivity)

	misses := store.misses
	again, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, again)
	assert.Equal(t, misses, store.misses, "second read hits the cache")
}

func TestAdminStatsWithNoopCacheRecomputes(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewStatsService(db.NewQueryExecutor(gdb), repository.NewQuizRepository(gdb), cache.NewNoopStore())

	stats, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalUsers)
}

func TestHumanizeSince(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", HumanizeSince(now.Add(-30*time.Second)))
	assert.Equal(t, "1 minute ago", HumanizeSince(now.Add(-90*time.Second)))
	assert.Equal(t, "5 minutes ago", HumanizeSince(now.Add(-5*time.Minute)))
	assert.Equal(t, "2 hours ago", HumanizeSince(now.Add(-2*time.Hour)))
	assert.Equal(t, "3 days ago", HumanizeSince(now.Add(-72*time.Hour)))
}
