package migration

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/model/legacy"
)

// Rollback removes everything the migration created, walking the phases
// in reverse dependency order. Because destination ids derive from the
// legacy ids, the rows to delete are recomputed from the source rather
// than tracked, so a rollback works even after a partial run. Rows
// created in the destination after the migration are untouched.
func (m *Migrator) Rollback() error {
	start := time.Now()
	for i := len(phaseOrder) - 1; i >= 0; i-- {
		phase := phaseOrder[i]
		deleted, err := m.rollbackPhase(phase)
		if err != nil {
			return fmt.Errorf("rollback %s: %w", phase, err)
		}
		fmt.Fprintf(m.out, "rollback %-14s removed %d rows\n", phase, deleted)
	}
	if err := m.dest.Where("1 = 1").Delete(&Checkpoint{}).Error; err != nil {
		return fmt.Errorf("clear checkpoints: %w", err)
	}
	fmt.Fprintf(m.out, "rollback finished in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Migrator) rollbackPhase(phase string) (int64, error) {
	switch phase {
	case PhaseUsers:
		return m.deleteMapped(&legacy.User{}, "users", &model.User{})
	case PhaseCourses:
		return m.deleteMapped(&legacy.Course{}, "courses", &model.Course{})
	case PhaseChapters:
		return m.deleteMapped(&legacy.Chapter{}, "chapters", &model.Chapter{})
	case PhaseLessons:
		return m.deleteMapped(&legacy.Lesson{}, "lessons", &model.Lesson{})
	case PhaseQuizzes:
		return m.deleteMapped(&legacy.Quiz{}, "quizzes", &model.Quiz{})
	case PhaseQuestions:
		return m.rollbackQuestions()
	case PhaseEnrollments:
		return m.deleteMapped(&legacy.Enrollment{}, "enrollments", &model.Enrollment{})
	case PhaseProgress:
		return m.deleteMapped(&legacy.Progress{}, "lesson_progress", &model.LessonProgress{})
	case PhaseQuizAttempts:
		return m.deleteMapped(&legacy.QuizAttempt{}, "quiz_attempts", &model.QuizAttempt{})
	}
	panic("unknown migration phase: " + phase)
}

// deleteMapped walks the legacy table in id order and deletes the
// destination rows whose ids map from it.
func (m *Migrator) deleteMapped(sourceModel any, table string, destModel any) (int64, error) {
	var total int64
	after := ""
	for {
		ids, err := m.legacyIDs(sourceModel, after)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		mapped := make([]uuid.UUID, len(ids))
		for i, id := range ids {
			mapped[i] = MapID(table, id)
		}
		res := m.dest.Where("id IN ?", mapped).Delete(destModel)
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		after = ids[len(ids)-1]
	}
}

// rollbackQuestions removes the exploded answer options before the
// questions that own them.
func (m *Migrator) rollbackQuestions() (int64, error) {
	var total int64
	after := ""
	for {
		ids, err := m.legacyIDs(&legacy.Question{}, after)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		mapped := make([]uuid.UUID, len(ids))
		for i, id := range ids {
			mapped[i] = MapID("questions", id)
		}
		res := m.dest.Where("question_id IN ?", mapped).Delete(&model.AnswerOption{})
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		res = m.dest.Where("id IN ?", mapped).Delete(&model.Question{})
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		after = ids[len(ids)-1]
	}
}

func (m *Migrator) legacyIDs(sourceModel any, after string) ([]string, error) {
	var ids []string
	q := m.source.Model(sourceModel).Order("id ASC").Limit(batchSize)
	if after != "" {
		q = q.Where("id > ?", after)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
