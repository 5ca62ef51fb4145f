package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gcsepal-backend/internal/model"
)

// CourseFilter narrows the course listing.
type CourseFilter struct {
	Subject string
	Level   string
	Status  string
	Page    int
	PerPage int
}

type CourseRepository interface {
	CreateCourse(course *model.Course) error
	GetCourseByID(id uuid.UUID) (*model.Course, error)
	// GetCourseTree loads the course with chapters and lessons ordered by
	// (chapter.sort_order, lesson.sort_order).
	GetCourseTree(id uuid.UUID) (*model.Course, error)
	ListCourses(filter CourseFilter) ([]model.Course, int64, error)
	UpdateCourse(course *model.Course) error
	ReplaceContent(courseID uuid.UUID, chapters []model.Chapter) error
	GetLessonByID(id uuid.UUID) (*model.Lesson, error)
	CreateLesson(lesson *model.Lesson) error
	UpdateLesson(lesson *model.Lesson) error
	CourseIDForLesson(lessonID uuid.UUID) (uuid.UUID, error)
	UpdateVideoStatus(assetID, uploadID, status, playbackURL string) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) CreateCourse(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *courseRepository) GetCourseByID(id uuid.UUID) (*model.Course, error) {
	var course model.Course
	err := r.db.Where("id = ?", id).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) GetCourseTree(id uuid.UUID) (*model.Course, error) {
	var course model.Course
	err := r.db.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) ListCourses(filter CourseFilter) ([]model.Course, int64, error) {
	query := r.db.Model(&model.Course{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var courses []model.Course
	err := query.Order("created_at DESC").Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) UpdateCourse(course *model.Course) error {
	return r.db.Save(course).Error
}

// ReplaceContent swaps the entire chapter/lesson tree of a course in one
// transaction. Import replaces, never merges.
func (r *courseRepository) ReplaceContent(courseID uuid.UUID, chapters []model.Chapter) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var chapterIDs []uuid.UUID
		if err := tx.Model(&model.Chapter{}).Where("course_id = ?", courseID).
			Pluck("id", &chapterIDs).Error; err != nil {
			return err
		}
		if len(chapterIDs) > 0 {
			if err := tx.Where("chapter_id IN ?", chapterIDs).Delete(&model.Lesson{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", courseID).Delete(&model.Chapter{}).Error; err != nil {
				return err
			}
		}
		for i := range chapters {
			chapters[i].CourseID = courseID
			if err := tx.Create(&chapters[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *courseRepository) GetLessonByID(id uuid.UUID) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.Where("id = ?", id).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *courseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.db.Create(lesson).Error
}

func (r *courseRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.db.Save(lesson).Error
}

func (r *courseRepository) CourseIDForLesson(lessonID uuid.UUID) (uuid.UUID, error) {
	var chapter model.Chapter
	err := r.db.Select("chapters.course_id").
		Joins("JOIN lessons ON lessons.chapter_id = chapters.id").
		Where("lessons.id = ?", lessonID).
		First(&chapter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return chapter.CourseID, nil
}

// UpdateVideoStatus updates every lesson matching the Mux asset or upload
// id and returns the number of rows touched.
func (r *courseRepository) UpdateVideoStatus(assetID, uploadID, status, playbackURL string) (int64, error) {
	updates := map[string]interface{}{"video_status": status}
	if playbackURL != "" {
		updates["video_url"] = playbackURL
	}
	if assetID != "" {
		updates["mux_asset_id"] = assetID
	}

	query := r.db.Model(&model.Lesson{})
	switch {
	case assetID != "" && uploadID != "":
		query = query.Where("mux_asset_id = ? OR mux_upload_id = ?", assetID, uploadID)
	case assetID != "":
		query = query.Where("mux_asset_id = ?", assetID)
	case uploadID != "":
		query = query.Where("mux_upload_id = ?", uploadID)
	default:
		return 0, nil
	}

	result := query.Updates(updates)
	return result.RowsAffected, result.Error
}
