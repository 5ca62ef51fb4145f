package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

// ErrCourseNotEnrollable is returned when enrolling into a course that is
// not published.
var ErrCourseNotEnrollable = errors.New("course is not open for enrollment")

// EnrollmentView pairs an enrollment with its course summary and the
// freshly computed completion percentage.
type EnrollmentView struct {
	Enrollment model.Enrollment `json:"enrollment"`
	Course     model.Course     `json:"course"`
	Progress   int              `json:"progress"`
}

type EnrollmentService interface {
	Enroll(userID, courseID uuid.UUID) (*model.Enrollment, error)
	MyEnrollments(userID uuid.UUID) ([]EnrollmentView, error)
	ActiveEnrollment(userID, courseID uuid.UUID) (*model.Enrollment, error)
}

type enrollmentService struct {
	enrollmentRepo  repository.EnrollmentRepository
	courseRepo      repository.CourseRepository
	progressService ProgressService
}

func NewEnrollmentService(enrollmentRepo repository.EnrollmentRepository, courseRepo repository.CourseRepository, progressService ProgressService) EnrollmentService {
	return &enrollmentService{
		enrollmentRepo:  enrollmentRepo,
		courseRepo:      courseRepo,
		progressService: progressService,
	}
}

func (s *enrollmentService) Enroll(userID, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courseRepo.GetCourseByID(courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != model.CourseStatusPublished {
		return nil, ErrCourseNotEnrollable
	}
	return s.enrollmentRepo.Enroll(userID, courseID)
}

func (s *enrollmentService) MyEnrollments(userID uuid.UUID) ([]EnrollmentView, error) {
	enrollments, err := s.enrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	views := make([]EnrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, err := s.courseRepo.GetCourseTree(enrollment.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load course %s: %w", enrollment.CourseID, err)
		}

		percentage, err := s.progressService.Completion(userID, course, &enrollment)
		if err != nil {
			return nil, err
		}

		summary := *course
		summary.Chapters = nil
		views = append(views, EnrollmentView{
			Enrollment: enrollment,
			Course:     summary,
			Progress:   percentage,
		})
	}
	return views, nil
}

func (s *enrollmentService) ActiveEnrollment(userID, courseID uuid.UUID) (*model.Enrollment, error) {
	return s.enrollmentRepo.GetByUserAndCourse(userID, courseID)
}
