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

type LessonController struct {
	courseService     service.CourseService
	enrollmentService service.EnrollmentService
	userRepo          repository.UserRepository
}

func NewLessonController(courseService service.CourseService, enrollmentService service.EnrollmentService, userRepo repository.UserRepository) *LessonController {
	return &LessonController{
		courseService:     courseService,
		enrollmentService: enrollmentService,
		userRepo:          userRepo,
	}
}

// Get returns the lesson content plus its previous/next neighbors in the
// course sequence. Viewing requires an active enrollment or a staff role.
func (lc *LessonController) Get(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lesson, err := lc.courseService.GetLesson(lessonID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load lesson")
		return
	}

	courseID, err := lc.courseService.CourseIDForLesson(lessonID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to resolve course")
		return
	}

	user, err := lc.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unknown user")
		return
	}

	enrolled := false
	if _, err := lc.enrollmentService.ActiveEnrollment(userID, courseID); err == nil {
		enrolled = true
	}

	if !authz.Allowed(authz.ActionLessonView, authz.Context{Role: user.Role, Enrolled: enrolled}) {
		respondError(c, http.StatusForbidden, "enrollment required to view this lesson")
		return
	}

	course, err := lc.courseService.GetCourseTree(courseID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load course")
		return
	}

	previous, next := service.Neighbors(course, lessonID)
	payload := gin.H{"lesson": lesson}
	if previous != nil {
		payload["previous_lesson_id"] = previous.ID
	}
	if next != nil {
		payload["next_lesson_id"] = next.ID
	}
	respondOK(c, payload)
}

// Update edits lesson content; owner-or-admin only.
func (lc *LessonController) Update(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lesson, err := lc.courseService.GetLesson(lessonID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load lesson")
		return
	}

	courseID, err := lc.courseService.CourseIDForLesson(lessonID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to resolve course")
		return
	}
	course, err := lc.courseService.GetCourse(courseID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load course")
		return
	}
	user, err := lc.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unknown user")
		return
	}

	ctx := authz.Context{
		Role:    user.Role,
		IsOwner: course.InstructorID == user.ID && user.IsStaff(),
	}
	if !authz.Allowed(authz.ActionLessonEdit, ctx) {
		respondError(c, http.StatusForbidden, "not allowed to edit this lesson")
		return
	}

	var input struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		Duration *int    `json:"duration"`
		VideoURL *string `json:"video_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Content != nil {
		lesson.Content = *input.Content
	}
	if input.Duration != nil {
		lesson.Duration = *input.Duration
	}
	if input.VideoURL != nil {
		lesson.VideoURL = *input.VideoURL
		lesson.VideoStatus = model.VideoStatusProcessing
	}

	if err := lc.courseService.UpdateLesson(lesson); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update lesson")
		return
	}
	respondOK(c, lesson)
}
