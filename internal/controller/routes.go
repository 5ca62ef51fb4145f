package controller

import (
	"github.com/gin-gonic/gin"

	"gcsepal-backend/utilities"
)

// Controllers bundles everything RegisterRoutes wires up.
type Controllers struct {
	Auth     *AuthController
	Course   *CourseController
	Lesson   *LessonController
	Progress *ProgressController
	Quiz     *QuizController
	Admin    *AdminController
	Chat     *ChatController
	Webhook  *WebhookController
}

// RegisterRoutes attaches all route handlers to the router.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, versionOf utilities.TokenVersionFunc, authLimiter gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		respondOK(c, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	if authLimiter != nil {
		auth.Use(authLimiter)
	}
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.Refresh)
		auth.POST("/sync", ctrl.Auth.Sync)
		auth.POST("/logout-all", utilities.AuthMiddleware(versionOf), ctrl.Auth.LogoutAll)
	}

	// Webhooks authenticate via signature, not bearer tokens.
	r.POST("/api/videos/mux-webhook", ctrl.Webhook.MuxWebhook)

	api := r.Group("/api")
	api.Use(utilities.AuthMiddleware(versionOf))
	{
		api.GET("/courses", ctrl.Course.List)
		api.POST("/courses", ctrl.Course.Create)
		api.GET("/courses/:id", ctrl.Course.Get)
		api.PUT("/courses/:id", ctrl.Course.Update)
		api.DELETE("/courses/:id", ctrl.Course.Archive)
		api.POST("/courses/:id/publish", ctrl.Course.Publish)
		api.POST("/courses/:id/enroll", ctrl.Course.Enroll)
		api.GET("/courses/:id/export", ctrl.Course.Export)
		api.POST("/courses/:id/import", ctrl.Course.Import)
		api.GET("/courses/:id/certificate", ctrl.Course.Certificate)

		api.GET("/lessons/:id", ctrl.Lesson.Get)
		api.POST("/lessons/:id", ctrl.Lesson.Update)

		api.GET("/enrollments/my", ctrl.Progress.MyEnrollments)
		api.POST("/progress/track", ctrl.Progress.Track)
		api.GET("/progress/analytics", ctrl.Progress.Analytics)

		api.POST("/quizzes", ctrl.Quiz.Create)
		api.GET("/quizzes/:id", ctrl.Quiz.Get)
		api.POST("/quizzes/:id/attempts", ctrl.Quiz.SubmitAttempt)

		api.GET("/admin/stats", ctrl.Admin.Stats)

		api.POST("/chat", ctrl.Chat.StreamChat)
	}
}
