package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/internal/service"
	"gcsepal-backend/utilities"
)

type ProgressController struct {
	progressService   service.ProgressService
	enrollmentService service.EnrollmentService
}

func NewProgressController(progressService service.ProgressService, enrollmentService service.EnrollmentService) *ProgressController {
	return &ProgressController{
		progressService:   progressService,
		enrollmentService: enrollmentService,
	}
}

// Track upserts a lesson progress row and returns it together with the
// freshly computed enrollment percentage.
func (pc *ProgressController) Track(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req struct {
		LessonID  uuid.UUID `json:"lesson_id" binding:"required"`
		Status    string    `json:"status"`
		TimeSpent int       `json:"time_spent"`
		Score     *float64  `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}
	if req.Status == "" {
		req.Status = model.ProgressStatusInProgress
	}
	if req.Status != model.ProgressStatusInProgress && req.Status != model.ProgressStatusCompleted {
		respondError(c, http.StatusBadRequest, "status must be in_progress or completed")
		return
	}

	row, percentage, err := pc.progressService.Track(userID, req.LessonID, req.Status, req.TimeSpent, req.Score)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "lesson or enrollment not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to track progress")
		return
	}

	respondOK(c, gin.H{"progress": row, "course_progress": percentage})
}

// MyEnrollments lists the caller's enrollments with freshly derived
// completion percentages.
func (pc *ProgressController) MyEnrollments(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	views, err := pc.enrollmentService.MyEnrollments(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load enrollments")
		return
	}
	respondOK(c, views)
}

func (pc *ProgressController) Analytics(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}

	analytics, err := pc.progressService.Analytics(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	respondOK(c, analytics)
}
