package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

type CourseService interface {
	CreateCourse(course *model.Course) error
	GetCourse(id uuid.UUID) (*model.Course, error)
	GetCourseTree(id uuid.UUID) (*model.Course, error)
	ListCourses(filter repository.CourseFilter) ([]model.Course, int64, error)
	UpdateCourse(course *model.Course) error
	ArchiveCourse(id uuid.UUID) error
	PublishCourse(id uuid.UUID) error
	GetLesson(id uuid.UUID) (*model.Lesson, error)
	UpdateLesson(lesson *model.Lesson) error
	CourseIDForLesson(lessonID uuid.UUID) (uuid.UUID, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
}

func NewCourseService(courseRepo repository.CourseRepository) CourseService {
	return &courseService{courseRepo: courseRepo}
}

func (s *courseService) CreateCourse(course *model.Course) error {
	if course.Title == "" {
		return fmt.Errorf("course title is required")
	}
	if course.Status == "" {
		course.Status = model.CourseStatusDraft
	}
	return s.courseRepo.CreateCourse(course)
}

func (s *courseService) GetCourse(id uuid.UUID) (*model.Course, error) {
	return s.courseRepo.GetCourseByID(id)
}

func (s *courseService) GetCourseTree(id uuid.UUID) (*model.Course, error) {
	return s.courseRepo.GetCourseTree(id)
}

func (s *courseService) ListCourses(filter repository.CourseFilter) ([]model.Course, int64, error) {
	return s.courseRepo.ListCourses(filter)
}

func (s *courseService) UpdateCourse(course *model.Course) error {
	return s.courseRepo.UpdateCourse(course)
}

func (s *courseService) ArchiveCourse(id uuid.UUID) error {
	course, err := s.courseRepo.GetCourseByID(id)
	if err != nil {
		return err
	}
	course.Status = model.CourseStatusArchived
	return s.courseRepo.UpdateCourse(course)
}

func (s *courseService) PublishCourse(id uuid.UUID) error {
	course, err := s.courseRepo.GetCourseByID(id)
	if err != nil {
		return err
	}
	course.Status = model.CourseStatusPublished
	return s.courseRepo.UpdateCourse(course)
}

func (s *courseService) GetLesson(id uuid.UUID) (*model.Lesson, error) {
	return s.courseRepo.GetLessonByID(id)
}

func (s *courseService) UpdateLesson(lesson *model.Lesson) error {
	return s.courseRepo.UpdateLesson(lesson)
}

func (s *courseService) CourseIDForLesson(lessonID uuid.UUID) (uuid.UUID, error) {
	return s.courseRepo.CourseIDForLesson(lessonID)
}

// FlattenLessons orders every lesson of a loaded course tree by
// (chapter order, lesson order) ascending, with a stable sort so equal
// orders keep their load order.
func FlattenLessons(course *model.Course) []model.Lesson {
	chapters := make([]model.Chapter, len(course.Chapters))
	copy(chapters, course.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})

	var flat []model.Lesson
	for _, chapter := range chapters {
		lessons := make([]model.Lesson, len(chapter.Lessons))
		copy(lessons, chapter.Lessons)
		sort.SliceStable(lessons, func(i, j int) bool {
			return lessons[i].Order < lessons[j].Order
		})
		flat = append(flat, lessons...)
	}
	return flat
}

// Neighbors resolves the previous and next lesson around lessonID in the
// flattened course sequence. An unknown lesson id yields two nils; that is
// defined behavior, not an error.
func Neighbors(course *model.Course, lessonID uuid.UUID) (previous, next *model.Lesson) {
	flat := FlattenLessons(course)
	for i := range flat {
		if flat[i].ID == lessonID {
			if i > 0 {
				previous = &flat[i-1]
			}
			if i < len(flat)-1 {
				next = &flat[i+1]
			}
			return previous, next
		}
	}
	return nil, nil
}
