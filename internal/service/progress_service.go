package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/utilities"
)

// ProgressSyncEvent asks the background handler to persist a corrected
// completion percentage onto an enrollment row.
type ProgressSyncEvent struct {
	EnrollmentID uuid.UUID
	Progress     int
}

// CourseAnalytics is the per-course rollup returned by Analytics.
type CourseAnalytics struct {
	CourseID         uuid.UUID `json:"course_id"`
	CourseTitle      string    `json:"course_title"`
	Progress         int       `json:"progress"`
	CompletedLessons int       `json:"completed_lessons"`
	TotalLessons     int       `json:"total_lessons"`
	TimeSpent        int       `json:"time_spent"`
}

// LearningAnalytics aggregates a student's activity across courses.
type LearningAnalytics struct {
	Courses        []CourseAnalytics `json:"courses"`
	TotalTimeSpent int               `json:"total_time_spent"`
	StreakDays     int               `json:"streak_days"`
}

type ProgressService interface {
	// Track upserts the lesson progress row and returns it with the freshly
	// computed enrollment percentage.
	Track(userID, lessonID uuid.UUID, status string, timeSpent int, score *float64) (*model.LessonProgress, int, error)
	// Completion derives the enrollment percentage from lesson progress
	// rows. The cached value on the enrollment is corrected asynchronously
	// when it drifts by more than one point; the returned value is always
	// the freshly computed one.
	Completion(userID uuid.UUID, course *model.Course, enrollment *model.Enrollment) (int, error)
	Analytics(userID uuid.UUID) (*LearningAnalytics, error)
}

type progressService struct {
	progressRepo   repository.ProgressRepository
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	bus            *utilities.EventBus
}

func NewProgressService(progressRepo repository.ProgressRepository, enrollmentRepo repository.EnrollmentRepository, courseRepo repository.CourseRepository, bus *utilities.EventBus) ProgressService {
	s := &progressService{
		progressRepo:   progressRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		bus:            bus,
	}
	bus.Subscribe(utilities.EventProgressSync, s.handleProgressSync)
	return s
}

// handleProgressSync runs off the request path. Errors are logged, never
// surfaced to the caller that triggered the correction.
func (s *progressService) handleProgressSync(data interface{}) {
	event, ok := data.(ProgressSyncEvent)
	if !ok {
		return
	}
	if err := s.enrollmentRepo.UpdateProgress(event.EnrollmentID, event.Progress); err != nil {
		utilities.Error("progress sync failed for enrollment %s: %v", event.EnrollmentID, err)
	}
}

func (s *progressService) Track(userID, lessonID uuid.UUID, status string, timeSpent int, score *float64) (*model.LessonProgress, int, error) {
	courseID, err := s.courseRepo.CourseIDForLesson(lessonID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve course for lesson: %w", err)
	}

	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, 0, err
	}

	row, err := s.progressRepo.UpsertLessonProgress(userID, lessonID, courseID, status, timeSpent, score)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to record progress: %w", err)
	}

	course, err := s.courseRepo.GetCourseTree(courseID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load course tree: %w", err)
	}

	percentage, err := s.Completion(userID, course, enrollment)
	if err != nil {
		return nil, 0, err
	}

	if percentage == 100 && enrollment.Status != model.EnrollmentStatusCompleted {
		if err := s.enrollmentRepo.MarkCompleted(enrollment.ID); err != nil {
			utilities.Error("failed to mark enrollment %s completed: %v", enrollment.ID, err)
		} else {
			s.bus.Publish(utilities.EventCourseCompleted, enrollment.ID)
		}
	}

	if timeSpent > 0 {
		session := &model.StudySession{
			UserID:    userID,
			CourseID:  &courseID,
			StartedAt: time.Now().Add(-time.Duration(timeSpent) * time.Second),
			Duration:  timeSpent,
		}
		if err := s.progressRepo.RecordSession(session); err != nil {
			utilities.Warn("failed to record study session: %v", err)
		}
	}

	return row, percentage, nil
}

func (s *progressService) Completion(userID uuid.UUID, course *model.Course, enrollment *model.Enrollment) (int, error) {
	totalLessons := course.TotalLessons()
	if totalLessons == 0 {
		return 0, nil
	}

	completed, err := s.progressRepo.CountCompleted(userID, course.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	percentage := int(math.Round(100 * float64(completed) / float64(totalLessons)))

	if enrollment != nil && abs(enrollment.Progress-percentage) > 1 {
		s.bus.Publish(utilities.EventProgressSync, ProgressSyncEvent{
			EnrollmentID: enrollment.ID,
			Progress:     percentage,
		})
	}

	return percentage, nil
}

func (s *progressService) Analytics(userID uuid.UUID) (*LearningAnalytics, error) {
	enrollments, err := s.enrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	analytics := &LearningAnalytics{Courses: []CourseAnalytics{}}
	for _, enrollment := range enrollments {
		course, err := s.courseRepo.GetCourseTree(enrollment.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load course %s: %w", enrollment.CourseID, err)
		}

		rows, err := s.progressRepo.ListByUserAndCourse(userID, course.ID)
		if err != nil {
			return nil, err
		}

		completedLessons := 0
		timeSpent := 0
		for _, row := range rows {
			if row.Status == model.ProgressStatusCompleted {
				completedLessons++
			}
			timeSpent += row.TimeSpent
		}

		percentage, err := s.Completion(userID, course, &enrollment)
		if err != nil {
			return nil, err
		}

		analytics.Courses = append(analytics.Courses, CourseAnalytics{
			CourseID:         course.ID,
			CourseTitle:      course.Title,
			Progress:         percentage,
			CompletedLessons: completedLessons,
			TotalLessons:     course.TotalLessons(),
			TimeSpent:        timeSpent,
		})
		analytics.TotalTimeSpent += timeSpent
	}

	streak, err := s.streakDays(userID)
	if err != nil {
		return nil, err
	}
	analytics.StreakDays = streak

	return analytics, nil
}

// streakDays counts consecutive calendar days with study activity ending
// today or yesterday.
func (s *progressService) streakDays(userID uuid.UUID) (int, error) {
	since := time.Now().AddDate(0, 0, -90)
	sessions, err := s.progressRepo.SessionsSince(userID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to load study sessions: %w", err)
	}

	active := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		active[session.StartedAt.Format("2006-01-02")] = true
	}

	day := time.Now()
	if !active[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for active[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
