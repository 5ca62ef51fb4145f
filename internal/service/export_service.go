package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

// ExportType discriminates course export documents from arbitrary JSON.
const ExportType = "course-export"

// ExportVersion is bumped when the envelope shape changes.
const ExportVersion = 1

// Import validation failures, each with its own user-facing message. The
// chain fails fast on the first violation and leaves the existing content
// untouched.
var (
	ErrInvalidExtension = errors.New("import file must be a .json file")
	ErrNotCourseExport  = errors.New("file is not a course export")
	ErrMissingFields    = errors.New("export must include a title, description and chapters")
	ErrChaptersNotArray = errors.New("chapters must be an array")
	ErrInvalidChapter   = errors.New("every chapter must include an id and title")
	ErrLessonsNotArray  = errors.New("chapter lessons must be an array")
)

// LessonExport is the serialized lesson shape inside an export document.
type LessonExport struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	Content  string `json:"content,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

type ChapterExport struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Order   int            `json:"order"`
	Lessons []LessonExport `json:"lessons,omitempty"`
}

// CourseExport is the downloadable envelope: the course content plus
// type/version/exportedAt metadata, stripped again on import.
type CourseExport struct {
	Type        string          `json:"type"`
	Version     int             `json:"version"`
	ExportedAt  time.Time       `json:"exported_at"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Subject     string          `json:"subject,omitempty"`
	Level       string          `json:"level,omitempty"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Chapters    []ChapterExport `json:"chapters"`
}

type ExportService interface {
	// Export serializes a loaded course tree into the export envelope.
	Export(course *model.Course) *CourseExport
	// ValidateImport runs the fail-fast validation chain over an uploaded
	// document and returns the parsed export on success.
	ValidateImport(filename string, data []byte) (*CourseExport, error)
	// ApplyImport replaces the course's entire chapter/lesson tree with the
	// imported content. Replace, never merge.
	ApplyImport(courseID uuid.UUID, doc *CourseExport) error
}

type exportService struct {
	courseRepo repository.CourseRepository
}

func NewExportService(courseRepo repository.CourseRepository) ExportService {
	return &exportService{courseRepo: courseRepo}
}

func (s *exportService) Export(course *model.Course) *CourseExport {
	doc := &CourseExport{
		Type:        ExportType,
		Version:     ExportVersion,
		ExportedAt:  time.Now().UTC(),
		Title:       course.Title,
		Description: course.Description,
		Subject:     course.Subject,
		Level:       course.Level,
		Difficulty:  course.Difficulty,
		Chapters:    []ChapterExport{},
	}
	for _, chapter := range course.Chapters {
		ch := ChapterExport{
			ID:    chapter.ID.String(),
			Title: chapter.Title,
			Order: chapter.Order,
		}
		for _, lesson := range chapter.Lessons {
			ch.Lessons = append(ch.Lessons, LessonExport{
				ID:       lesson.ID.String(),
				Title:    lesson.Title,
				Order:    lesson.Order,
				Content:  lesson.Content,
				VideoURL: lesson.VideoURL,
				Duration: lesson.Duration,
			})
		}
		doc.Chapters = append(doc.Chapters, ch)
	}
	return doc
}

func (s *exportService) ValidateImport(filename string, data []byte) (*CourseExport, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return nil, ErrInvalidExtension
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrNotCourseExport
	}

	var docType string
	if err := json.Unmarshal(raw["type"], &docType); err != nil || docType != ExportType {
		return nil, ErrNotCourseExport
	}

	var title, description string
	_ = json.Unmarshal(raw["title"], &title)
	_ = json.Unmarshal(raw["description"], &description)
	chaptersRaw, hasChapters := raw["chapters"]
	if title == "" || description == "" || !hasChapters {
		return nil, ErrMissingFields
	}

	var chapters []map[string]json.RawMessage
	if err := json.Unmarshal(chaptersRaw, &chapters); err != nil {
		return nil, ErrChaptersNotArray
	}

	for _, chapter := range chapters {
		var id, chTitle string
		_ = json.Unmarshal(chapter["id"], &id)
		_ = json.Unmarshal(chapter["title"], &chTitle)
		if id == "" || chTitle == "" {
			return nil, ErrInvalidChapter
		}
		if lessonsRaw, ok := chapter["lessons"]; ok {
			var lessons []json.RawMessage
			if err := json.Unmarshal(lessonsRaw, &lessons); err != nil {
				return nil, ErrLessonsNotArray
			}
		}
	}

	var doc CourseExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrNotCourseExport
	}
	return &doc, nil
}

func (s *exportService) ApplyImport(courseID uuid.UUID, doc *CourseExport) error {
	chapters := make([]model.Chapter, 0, len(doc.Chapters))
	for _, ch := range doc.Chapters {
		chapter := model.Chapter{
			ID:    parseOrNewID(ch.ID),
			Title: ch.Title,
			Order: ch.Order,
		}
		for _, l := range ch.Lessons {
			chapter.Lessons = append(chapter.Lessons, model.Lesson{
				ID:        parseOrNewID(l.ID),
				ChapterID: chapter.ID,
				Title:     l.Title,
				Order:     l.Order,
				Content:   l.Content,
				VideoURL:  l.VideoURL,
				Duration:  l.Duration,
			})
		}
		chapters = append(chapters, chapter)
	}
	return s.courseRepo.ReplaceContent(courseID, chapters)
}

// parseOrNewID keeps stable ids from the export when they parse as uuids
// and mints fresh ones otherwise.
func parseOrNewID(raw string) uuid.UUID {
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.New()
}
