package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gcsepal-backend/internal/authz"
	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/internal/service"
	"gcsepal-backend/utilities"
)

type CourseController struct {
	courseService      service.CourseService
	enrollmentService  service.EnrollmentService
	exportService      service.ExportService
	certificateService service.CertificateService
	userRepo           repository.UserRepository
	pageSize           int
}

func NewCourseController(courseService service.CourseService, enrollmentService service.EnrollmentService, exportService service.ExportService, certificateService service.CertificateService, userRepo repository.UserRepository, pageSize int) *CourseController {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &CourseController{
		courseService:      courseService,
		enrollmentService:  enrollmentService,
		exportService:      exportService,
		certificateService: certificateService,
		userRepo:           userRepo,
		pageSize:           pageSize,
	}
}

func (cc *CourseController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	filter := repository.CourseFilter{
		Subject: c.Query("subject"),
		Level:   c.Query("level"),
		Status:  model.CourseStatusPublished,
		Page:    page,
		PerPage: cc.pageSize,
	}
	// Staff may list unpublished courses too.
	if utilities.CallerRole(c) == model.RoleAdmin || utilities.CallerRole(c) == model.RoleTeacher {
		filter.Status = c.Query("status")
	}

	courses, total, err := cc.courseService.ListCourses(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list courses")
		return
	}
	respondPaginated(c, courses, Pagination{Page: page, PerPage: cc.pageSize, Total: total})
}

func (cc *CourseController) Create(c *gin.Context) {
	caller, ok := cc.caller(c)
	if !ok {
		return
	}
	if !authz.Allowed(authz.ActionCourseCreate, authz.Context{Role: caller.Role}) {
		respondError(c, http.StatusForbidden, "not allowed to create courses")
		return
	}

	var course model.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}
	course.InstructorID = caller.ID

	if err := cc.courseService.CreateCourse(&course); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondCreated(c, course)
}

func (cc *CourseController) Get(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	course, err := cc.courseService.GetCourseTree(courseID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "course not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load course")
		return
	}
	respondOK(c, course)
}

func (cc *CourseController) Update(c *gin.Context) {
	course, _, ok := cc.loadForEdit(c, authz.ActionCourseEdit)
	if !ok {
		return
	}

	var input struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Subject     *string  `json:"subject"`
		Level       *string  `json:"level"`
		Difficulty  *string  `json:"difficulty"`
		Price       *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Subject != nil {
		course.Subject = *input.Subject
	}
	if input.Level != nil {
		course.Level = *input.Level
	}
	if input.Difficulty != nil {
		course.Difficulty = *input.Difficulty
	}
	if input.Price != nil {
		course.Price = *input.Price
	}

	if err := cc.courseService.UpdateCourse(course); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update course")
		return
	}
	respondOK(c, course)
}

func (cc *CourseController) Publish(c *gin.Context) {
	course, _, ok := cc.loadForEdit(c, authz.ActionCourseEdit)
	if !ok {
		return
	}
	if err := cc.courseService.PublishCourse(course.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to publish course")
		return
	}
	respondOK(c, gin.H{"message": "course published"})
}

func (cc *CourseController) Archive(c *gin.Context) {
	course, _, ok := cc.loadForEdit(c, authz.ActionCourseArchive)
	if !ok {
		return
	}
	if err := cc.courseService.ArchiveCourse(course.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to archive course")
		return
	}
	respondOK(c, gin.H{"message": "course archived"})
}

func (cc *CourseController) Enroll(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := cc.enrollmentService.Enroll(userID, courseID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "course not found")
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCourseNotEnrollable):
		respondError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		respondError(c, http.StatusInternalServerError, "failed to enroll")
	default:
		respondCreated(c, enrollment)
	}
}

// Export serializes the course tree into the downloadable envelope.
func (cc *CourseController) Export(c *gin.Context) {
	course, _, ok := cc.loadForEdit(c, authz.ActionCourseExport)
	if !ok {
		return
	}
	tree, err := cc.courseService.GetCourseTree(course.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load course")
		return
	}
	doc := cc.exportService.Export(tree)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "course-"+course.ID.String()+".json"))
	c.JSON(http.StatusOK, doc)
}

// Import validates an uploaded export document and replaces the course
// content with it. Validation failures leave the course untouched.
func (cc *CourseController) Import(c *gin.Context) {
	course, _, ok := cc.loadForEdit(c, authz.ActionCourseImport)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no file uploaded")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read file")
		return
	}

	doc, err := cc.exportService.ValidateImport(fileHeader.Filename, data)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := cc.exportService.ApplyImport(course.ID, doc); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to apply import")
		return
	}
	respondOK(c, gin.H{"message": "course content replaced"})
}

// Certificate renders a completion certificate for the caller.
func (cc *CourseController) Certificate(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := cc.courseService.GetCourse(courseID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "course not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load course")
		return
	}

	enrollment, err := cc.enrollmentService.ActiveEnrollment(userID, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusForbidden, "not enrolled in this course")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load enrollment")
		return
	}

	user, err := cc.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	pdf, err := cc.certificateService.Generate(user, course, enrollment)
	if errors.Is(err, service.ErrCourseNotCompleted) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate certificate")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="certificate.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (cc *CourseController) caller(c *gin.Context) (*model.User, bool) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}
	user, err := cc.userRepo.GetUserByID(userID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unknown user")
		return nil, false
	}
	return user, true
}

// loadForEdit loads the course and enforces the policy rule for a staff
// action on it.
func (cc *CourseController) loadForEdit(c *gin.Context, action authz.Action) (*model.Course, *model.User, bool) {
	caller, ok := cc.caller(c)
	if !ok {
		return nil, nil, false
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, nil, false
	}

	course, err := cc.courseService.GetCourse(courseID)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "course not found")
		return nil, nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load course")
		return nil, nil, false
	}

	ctx := authz.Context{
		Role:    caller.Role,
		IsOwner: course.InstructorID == caller.ID && caller.IsStaff(),
	}
	if !authz.Allowed(action, ctx) {
		respondError(c, http.StatusForbidden, "not allowed")
		return nil, nil, false
	}
	return course, caller, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
