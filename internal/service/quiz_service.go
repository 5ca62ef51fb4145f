package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

// AnswerSubmission is one selected option in a quiz submission.
type AnswerSubmission struct {
	QuestionID    uuid.UUID `json:"question_id" binding:"required"`
	SelectedIndex int       `json:"selected_index"`
}

// AttemptResult is returned to the student after grading.
type AttemptResult struct {
	AttemptID    uuid.UUID `json:"attempt_id"`
	Score        float64   `json:"score"`
	Passed       bool      `json:"passed"`
	CorrectCount int       `json:"correct_count"`
	Total        int       `json:"total"`
}

type QuizService interface {
	CreateQuiz(quiz *model.Quiz) error
	// GetQuiz loads a quiz; unless includeAnswers is set, correctness
	// markers are stripped so students cannot read them off the wire.
	GetQuiz(id uuid.UUID, includeAnswers bool) (*model.Quiz, error)
	// SubmitAttempt grades a submission by option position against each
	// question's recorded correct index.
	SubmitAttempt(userID, quizID uuid.UUID, answers []AnswerSubmission, timeSpent int) (*AttemptResult, error)
	AttemptsByUser(userID uuid.UUID) ([]model.QuizAttempt, error)
}

type quizService struct {
	quizRepo repository.QuizRepository
}

func NewQuizService(quizRepo repository.QuizRepository) QuizService {
	return &quizService{quizRepo: quizRepo}
}

func (s *quizService) CreateQuiz(quiz *model.Quiz) error {
	return s.quizRepo.CreateQuiz(quiz)
}

func (s *quizService) GetQuiz(id uuid.UUID, includeAnswers bool) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetQuizByID(id)
	if err != nil {
		return nil, err
	}
	if !includeAnswers {
		for i := range quiz.Questions {
			quiz.Questions[i].CorrectIndex = -1
			for j := range quiz.Questions[i].Options {
				quiz.Questions[i].Options[j].IsCorrect = false
			}
		}
	}
	return quiz, nil
}

func (s *quizService) SubmitAttempt(userID, quizID uuid.UUID, answers []AnswerSubmission, timeSpent int) (*AttemptResult, error) {
	quiz, err := s.quizRepo.GetQuizByID(quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz has no questions")
	}

	// Keep one submission per question (the last wins) so repeating a
	// known answer cannot inflate the score.
	submitted := make(map[uuid.UUID]AnswerSubmission, len(answers))
	for _, answer := range answers {
		submitted[answer.QuestionID] = answer
	}

	graded := make([]model.AttemptAnswer, 0, len(quiz.Questions))
	correctCount := 0
	for _, question := range quiz.Questions {
		answer, ok := submitted[question.ID]
		if !ok {
			continue
		}
		correct := answer.SelectedIndex == question.CorrectIndex
		if correct {
			correctCount++
		}
		graded = append(graded, model.AttemptAnswer{
			QuestionID:    answer.QuestionID,
			SelectedIndex: answer.SelectedIndex,
			Correct:       correct,
		})
	}

	score := 100 * float64(correctCount) / float64(len(quiz.Questions))
	passed := score >= quiz.PassingScore

	encoded, err := json.Marshal(graded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	attempt := &model.QuizAttempt{
		UserID:    userID,
		QuizID:    quizID,
		Score:     score,
		Passed:    passed,
		TimeSpent: timeSpent,
		Answers:   datatypes.JSON(encoded),
	}
	if err := s.quizRepo.SaveAttempt(attempt); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	return &AttemptResult{
		AttemptID:    attempt.ID,
		Score:        score,
		Passed:       passed,
		CorrectCount: correctCount,
		Total:        len(quiz.Questions),
	}, nil
}

func (s *quizService) AttemptsByUser(userID uuid.UUID) ([]model.QuizAttempt, error) {
	return s.quizRepo.AttemptsByUser(userID)
}
