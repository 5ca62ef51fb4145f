package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

// seedQuiz builds a two-question quiz. The second question carries
// duplicate option text so the tests can prove grading goes by position.
func seedQuiz(t *testing.T, db *gorm.DB) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:        "Algebra check",
		PassingScore: 60,
		Questions: []model.Question{
			{
				Text:         "2 + 2 = ?",
				Order:        1,
				CorrectIndex: 1,
				Options: []model.AnswerOption{
					{Text: "3", Position: 0},
					{Text: "4", Position: 1, IsCorrect: true},
					{Text: "5", Position: 2},
				},
			},
			{
				Text:         "Which is the simplified form?",
				Order:        2,
				CorrectIndex: 2,
				Options: []model.AnswerOption{
					{Text: "2x", Position: 0},
					{Text: "2x", Position: 1},
					{Text: "2x", Position: 2, IsCorrect: true},
				},
			},
		},
	}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

func TestSubmitAttemptGradesByPosition(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db))
	quiz := seedQuiz(t, db)
	user := seedUser(t, db, model.RoleStudent)

	result, err := svc.SubmitAttempt(user.ID, quiz.ID, []AnswerSubmission{
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 1},
		{QuestionID: quiz.Questions[1].ID, SelectedIndex: 2},
	}, 90)
	require.NoError(t, err)

	assert.Equal(t, float64(100), result.Score)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.CorrectCount)
}

func TestSubmitAttemptDuplicateOptionTextDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db))
	quiz := seedQuiz(t, db)
	user := seedUser(t, db, model.RoleStudent)

	// Index 0 has the same text as the correct index 2; only the
	// position matters.
	result, err := svc.SubmitAttempt(user.ID, quiz.ID, []AnswerSubmission{
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 1},
		{QuestionID: quiz.Questions[1].ID, SelectedIndex: 0},
	}, 45)
	require.NoError(t, err)

	assert.Equal(t, float64(50), result.Score)
	assert.False(t, result.Passed, "50 is below the 60 passing score")
	assert.Equal(t, 1, result.CorrectCount)
}

func TestSubmitAttemptRepeatedAnswersCountOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db))
	quiz := seedQuiz(t, db)
	user := seedUser(t, db, model.RoleStudent)

	// Submitting the same correct answer twice grades one question,
	// not two.
	result, err := svc.SubmitAttempt(user.ID, quiz.ID, []AnswerSubmission{
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 1},
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 1},
	}, 30)
	require.NoError(t, err)

	assert.Equal(t, float64(50), result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.CorrectCount)
}

func TestSubmitAttemptLastSubmissionPerQuestionWins(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db))
	quiz := seedQuiz(t, db)
	user := seedUser(t, db, model.RoleStudent)

	result, err := svc.SubmitAttempt(user.ID, quiz.ID, []AnswerSubmission{
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 1},
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 0},
		{QuestionID: quiz.Questions[1].ID, SelectedIndex: 2},
	}, 60)
	require.NoError(t, err)

	assert.Equal(t, float64(50), result.Score, "the revised answer to question one replaces the first")
	assert.Equal(t, 1, result.CorrectCount)
}

func TestSubmitAttemptUnansweredQuestionsScoreZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db))
	quiz := seedQuiz(t, db)
	user := seedUser(t, db, model.RoleStudent)

	result, err := svc.SubmitAttempt(user.ID, quiz.ID, []AnswerSubmission{
		{QuestionID: quiz.Questions[0].ID, SelectedIndex: 1},
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, float64(50), result.Score, "denominator is the question count, not the answer count")
}

func TestGetQuizStripsCorrectnessForStudents(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuizService(repository.NewQuizRepository(db))
	quiz := seedQuiz(t, db)

	stripped, err := svc.GetQuiz(quiz.ID, false)
	require.NoError(t, err)
	for _, question := range stripped.Questions {
		assert.Equal(t, -1, question.CorrectIndex)
		for _, option := range question.Options {
			assert.False(t, option.IsCorrect)
		}
	}

	full, err := svc.GetQuiz(quiz.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, full.Questions[0].CorrectIndex)
	assert.True(t, full.Questions[1].Options[2].IsCorrect)
}
