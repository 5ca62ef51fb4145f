// Package migration moves data from the legacy denormalized schema into
// the current one. The job is resumable: each phase records a checkpoint
// row after every batch, and ids are derived deterministically from the
// legacy ids, so re-running a partially completed migration skips what is
// already committed instead of duplicating it.
package migration

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/model/legacy"
	"gcsepal-backend/utilities"
)

const batchSize = 200

// Phase names in dependency order. Rollback walks them in reverse.
const (
	PhaseUsers        = "users"
	PhaseCourses      = "courses"
	PhaseChapters     = "chapters"
	PhaseLessons      = "lessons"
	PhaseQuizzes      = "quizzes"
	PhaseQuestions    = "questions"
	PhaseEnrollments  = "enrollments"
	PhaseProgress     = "progress"
	PhaseQuizAttempts = "quiz_attempts"
)

var phaseOrder = []string{
	PhaseUsers,
	PhaseCourses,
	PhaseChapters,
	PhaseLessons,
	PhaseQuizzes,
	PhaseQuestions,
	PhaseEnrollments,
	PhaseProgress,
	PhaseQuizAttempts,
}

type Migrator struct {
	source *gorm.DB
	dest   *gorm.DB
	out    io.Writer
}

func NewMigrator(source, dest *gorm.DB) *Migrator {
	return &Migrator{source: source, dest: dest, out: os.Stdout}
}

// SetOutput redirects progress reporting, mainly for tests.
func (m *Migrator) SetOutput(w io.Writer) { m.out = w }

// Run executes every phase in order. A phase whose checkpoint is marked
// complete is skipped; an interrupted phase resumes from its last
// committed source id.
func (m *Migrator) Run() error {
	if err := m.dest.AutoMigrate(&Checkpoint{}); err != nil {
		return fmt.Errorf("prepare checkpoints: %w", err)
	}
	start := time.Now()
	for _, phase := range phaseOrder {
		if err := m.runPhase(phase); err != nil {
			return fmt.Errorf("phase %s: %w", phase, err)
		}
	}
	fmt.Fprintf(m.out, "migration finished in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Migrator) runPhase(phase string) error {
	cp, err := loadCheckpoint(m.dest, phase)
	if err != nil {
		return err
	}
	if cp.CompletedAt != nil {
		fmt.Fprintf(m.out, "phase %-14s already complete (%d rows), skipping\n", phase, cp.Migrated)
		return nil
	}

	convert := m.converterFor(phase)
	for {
		ids, records, err := convert(cp.LastSourceID, batchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			break
		}
		err = m.dest.Transaction(func(tx *gorm.DB) error {
			for _, rec := range records {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error; err != nil {
					return err
				}
			}
			cp.LastSourceID = ids[len(ids)-1]
			cp.Migrated += int64(len(ids))
			return saveCheckpoint(tx, cp)
		})
		if err != nil {
			return err
		}
	}
	if err := completeCheckpoint(m.dest, cp); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "phase %-14s migrated %d rows\n", phase, cp.Migrated)
	return nil
}

// converter loads one batch of legacy rows after the given source id and
// returns their ids plus the destination records to create.
type converter func(after string, limit int) (ids []string, records []any, err error)

func (m *Migrator) converterFor(phase string) converter {
	switch phase {
	case PhaseUsers:
		return m.convertUsers
	case PhaseCourses:
		return m.convertCourses
	case PhaseChapters:
		return m.convertChapters
	case PhaseLessons:
		return m.convertLessons
	case PhaseQuizzes:
		return m.convertQuizzes
	case PhaseQuestions:
		return m.convertQuestions
	case PhaseEnrollments:
		return m.convertEnrollments
	case PhaseProgress:
		return m.convertProgress
	case PhaseQuizAttempts:
		return m.convertQuizAttempts
	}
	panic("unknown migration phase: " + phase)
}

func batchQuery(db *gorm.DB, after string, limit int) *gorm.DB {
	q := db.Order("id ASC").Limit(limit)
	if after != "" {
		q = q.Where("id > ?", after)
	}
	return q
}

func (m *Migrator) convertUsers(after string, limit int) ([]string, []any, error) {
	var rows []legacy.User
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		records = append(records, &model.User{
			ID:         MapID("users", r.ID),
			ExternalID: r.ID,
			Email:      r.Email,
			Name:       r.Name,
			Role:       normalizeRole(r.Role),
			CreatedAt:  r.CreatedAt,
		})
	}
	return ids, records, nil
}

func normalizeRole(role string) string {
	switch role {
	case model.RoleAdmin, model.RoleTeacher, model.RoleStudent:
		return role
	case "instructor":
		return model.RoleTeacher
	default:
		return model.RoleStudent
	}
}

func (m *Migrator) convertCourses(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Course
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		records = append(records, &model.Course{
			ID:              MapID("courses", r.ID),
			Title:           r.Title,
			Description:     r.Description,
			Subject:         r.Subject,
			Level:           r.Level,
			Difficulty:      r.Difficulty,
			InstructorID:    MapID("users", r.InstructorID),
			Price:           r.Price,
			Status:          r.Status,
			EnrollmentCount: r.EnrollmentCount,
			Rating:          r.Rating,
			CreatedAt:       r.CreatedAt,
		})
	}
	return ids, records, nil
}

func (m *Migrator) convertChapters(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Chapter
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		records = append(records, &model.Chapter{
			ID:       MapID("chapters", r.ID),
			CourseID: MapID("courses", r.CourseID),
			Title:    r.Title,
			Order:    r.Position,
			Duration: r.Duration,
		})
	}
	return ids, records, nil
}

func (m *Migrator) convertLessons(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Lesson
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		status := ""
		if r.VideoURL != "" {
			status = model.VideoStatusReady
		}
		ids = append(ids, r.ID)
		records = append(records, &model.Lesson{
			ID:          MapID("lessons", r.ID),
			ChapterID:   MapID("chapters", r.ChapterID),
			Title:       r.Title,
			Order:       r.Position,
			Content:     r.Content,
			VideoURL:    r.VideoURL,
			VideoStatus: status,
			Duration:    r.Duration,
		})
	}
	return ids, records, nil
}

func (m *Migrator) convertQuizzes(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Quiz
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		records = append(records, &model.Quiz{
			ID:           MapID("quizzes", r.ID),
			Title:        r.Title,
			LessonID:     mapOptionalID("lessons", r.LessonID),
			ChapterID:    mapOptionalID("chapters", r.ChapterID),
			CourseID:     mapOptionalID("courses", r.CourseID),
			PassingScore: r.PassingScore,
		})
	}
	return ids, records, nil
}

func mapOptionalID(table string, legacyID *string) *uuid.UUID {
	if legacyID == nil || *legacyID == "" {
		return nil
	}
	id := MapID(table, *legacyID)
	return &id
}

// convertQuestions explodes the legacy JSON options blob into answer
// option rows. Correctness is stored by index: the first option whose
// text equals the legacy correct answer wins, so duplicated option text
// cannot flip a later option to correct.
func (m *Migrator) convertQuestions(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Question
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		var options []string
		if r.Options != "" {
			if err := json.Unmarshal([]byte(r.Options), &options); err != nil {
				return nil, nil, fmt.Errorf("question %s: bad options blob: %w", r.ID, err)
			}
		}
		correctIndex := -1
		for i, opt := range options {
			if opt == r.CorrectAnswer {
				correctIndex = i
				break
			}
		}
		if correctIndex < 0 && len(options) > 0 {
			utilities.Warn("question %s: correct answer %q not found among options, defaulting to index 0", r.ID, r.CorrectAnswer)
			correctIndex = 0
		}

		questionID := MapID("questions", r.ID)
		ids = append(ids, r.ID)
		records = append(records, &model.Question{
			ID:           questionID,
			QuizID:       MapID("quizzes", r.QuizID),
			Text:         r.Text,
			Type:         r.Type,
			Order:        r.Position,
			CorrectIndex: correctIndex,
		})
		for i, opt := range options {
			records = append(records, &model.AnswerOption{
				ID:         MapID("answer_options", fmt.Sprintf("%s:%d", r.ID, i)),
				QuestionID: questionID,
				Text:       opt,
				Position:   i,
				IsCorrect:  i == correctIndex,
			})
		}
	}
	return ids, records, nil
}

func (m *Migrator) convertEnrollments(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Enrollment
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		status := r.Status
		if status == "" {
			status = model.EnrollmentStatusActive
		}
		ids = append(ids, r.ID)
		records = append(records, &model.Enrollment{
			ID:         MapID("enrollments", r.ID),
			UserID:     MapID("users", r.UserID),
			CourseID:   MapID("courses", r.CourseID),
			Status:     status,
			Progress:   r.Progress,
			EnrolledAt: r.EnrolledAt,
		})
	}
	return ids, records, nil
}

// convertProgress splits the unified legacy progress table. Rows with a
// lesson id become lesson progress records; rows without one carried
// course-level state in the old schema and fold into the enrollment row,
// which already owns that state in the new one.
func (m *Migrator) convertProgress(after string, limit int) ([]string, []any, error) {
	var rows []legacy.Progress
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		if r.LessonID != nil && *r.LessonID != "" {
			records = append(records, &model.LessonProgress{
				ID:          MapID("lesson_progress", r.ID),
				UserID:      MapID("users", r.UserID),
				LessonID:    MapID("lessons", *r.LessonID),
				CourseID:    MapID("courses", r.CourseID),
				Status:      r.Status,
				TimeSpent:   r.TimeSpent,
				Score:       r.Score,
				StartedAt:   r.StartedAt,
				CompletedAt: r.CompletedAt,
			})
			continue
		}
		// Course-level row. The enrollments phase already created the
		// enrollment; apply completion state onto it in place.
		if r.Status == model.ProgressStatusCompleted {
			err := m.dest.Model(&model.Enrollment{}).
				Where("user_id = ? AND course_id = ?", MapID("users", r.UserID), MapID("courses", r.CourseID)).
				Updates(map[string]any{
					"status":       model.EnrollmentStatusCompleted,
					"progress":     100,
					"completed_at": r.CompletedAt,
				}).Error
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return ids, records, nil
}

// legacyAnswer is the element shape of the legacy attempt answers blob.
type legacyAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// convertQuizAttempts re-grades the legacy free-text answer blobs into
// index-based selections against the legacy question options.
func (m *Migrator) convertQuizAttempts(after string, limit int) ([]string, []any, error) {
	var rows []legacy.QuizAttempt
	if err := batchQuery(m.source, after, limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]any, 0, len(rows))
	for _, r := range rows {
		answers, err := m.normalizeAnswers(r)
		if err != nil {
			return nil, nil, err
		}
		encoded, err := json.Marshal(answers)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, r.ID)
		records = append(records, &model.QuizAttempt{
			ID:        MapID("quiz_attempts", r.ID),
			UserID:    MapID("users", r.UserID),
			QuizID:    MapID("quizzes", r.QuizID),
			Score:     r.Score,
			Passed:    r.Passed,
			TimeSpent: r.TimeSpent,
			Answers:   datatypes.JSON(encoded),
			CreatedAt: r.CreatedAt,
		})
	}
	return ids, records, nil
}

func (m *Migrator) normalizeAnswers(attempt legacy.QuizAttempt) ([]model.AttemptAnswer, error) {
	var raw []legacyAnswer
	if attempt.Answers != "" {
		if err := json.Unmarshal([]byte(attempt.Answers), &raw); err != nil {
			return nil, fmt.Errorf("attempt %s: bad answers blob: %w", attempt.ID, err)
		}
	}
	answers := make([]model.AttemptAnswer, 0, len(raw))
	for _, a := range raw {
		var q legacy.Question
		if err := m.source.Where("id = ?", a.QuestionID).First(&q).Error; err != nil {
			return nil, fmt.Errorf("attempt %s: question %s: %w", attempt.ID, a.QuestionID, err)
		}
		var options []string
		if q.Options != "" {
			if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
				return nil, fmt.Errorf("question %s: bad options blob: %w", q.ID, err)
			}
		}
		selected := -1
		for i, opt := range options {
			if opt == a.Answer {
				selected = i
				break
			}
		}
		answers = append(answers, model.AttemptAnswer{
			QuestionID:    MapID("questions", a.QuestionID),
			SelectedIndex: selected,
			Correct:       selected >= 0 && options[selected] == q.CorrectAnswer,
		})
	}
	return answers, nil
}
