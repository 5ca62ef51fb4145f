package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gcsepal-backend/internal/authz"
	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/internal/service"
	"gcsepal-backend/utilities"
)

type QuizController struct {
	quizService service.QuizService
	userRepo    repository.UserRepository
}

func NewQuizController(quizService service.QuizService, userRepo repository.UserRepository) *QuizController {
	return &QuizController{quizService: quizService, userRepo: userRepo}
}

func (qc *QuizController) Create(c *gin.Context) {
	if !authz.Allowed(authz.ActionCourseCreate, authz.Context{Role: utilities.CallerRole(c)}) {
		respondError(c, http.StatusForbidden, "not allowed to create quizzes")
		return
	}

	var quiz model.Quiz
	if err := c.ShouldBindJSON(&quiz); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := qc.quizService.CreateQuiz(&quiz); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create quiz")
		return
	}
	respondCreated(c, quiz)
}

// Get returns the quiz; correctness markers are included only for staff.
func (qc *QuizController) Get(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role := utilities.CallerRole(c)
	includeAnswers := role == model.RoleAdmin || role == model.RoleTeacher

	quiz, err := qc.quizService.GetQuiz(quizID, includeAnswers)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	respondOK(c, quiz)
}

func (qc *QuizController) SubmitAttempt(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Answers   []service.AnswerSubmission `json:"answers" binding:"required"`
		TimeSpent int                        `json:"time_spent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}

	result, err := qc.quizService.SubmitAttempt(userID, quizID, req.Answers, req.TimeSpent)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to grade attempt")
		return
	}
	respondOK(c, result)
}
