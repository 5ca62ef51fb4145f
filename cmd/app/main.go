package main

import (
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gcsepal-backend/internal/cache"
	"gcsepal-backend/internal/config"
	"gcsepal-backend/internal/controller"
	"gcsepal-backend/internal/db"
	"gcsepal-backend/internal/llm"
	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/internal/service"
	"gcsepal-backend/pkg/middleware"
	"gcsepal-backend/utilities"
)

const version = "1.0.0"

func main() {
	printStartUpBanner()

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	utilities.InitLogger(cfg.Context.LogDir)
	defer utilities.SyncLogger()

	utilities.ConfigureJWT(
		cfg.Authentication.AccessSecret,
		cfg.Authentication.RefreshSecret,
		time.Duration(cfg.Authentication.AccessExpiryMinutes)*time.Minute,
		time.Duration(cfg.Authentication.RefreshExpiryHours)*time.Hour,
	)

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	gormDB := db.GetDB()

	// Run migrations.
	err = gormDB.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Chapter{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.LessonProgress{},
		&model.StudySession{},
		&model.Quiz{},
		&model.Question{},
		&model.AnswerOption{},
		&model.QuizAttempt{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	// Admin stats cache: Redis when configured, in-process fallback otherwise.
	var statsCache cache.Store
	if cfg.ThirdParty.RedisAddr != "" {
		statsCache, err = cache.NewRedisStore(cfg.ThirdParty.RedisAddr)
		if err != nil {
			utilities.Warn("redis unavailable (%v), falling back to no-op cache", err)
			statsCache = cache.NewNoopStore()
		}
	} else {
		statsCache = cache.NewNoopStore()
	}

	// Create repositories.
	userRepo := repository.NewUserRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	enrollmentRepo := repository.NewEnrollmentRepository(gormDB)
	progressRepo := repository.NewProgressRepository(gormDB)
	quizRepo := repository.NewQuizRepository(gormDB)

	// Create services.
	authService := service.NewAuthService(userRepo)
	courseService := service.NewCourseService(courseRepo)
	progressService := service.NewProgressService(progressRepo, enrollmentRepo, courseRepo, utilities.GlobalEventBus)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, progressService)
	exportService := service.NewExportService(courseRepo)
	certificateService := service.NewCertificateService()
	quizService := service.NewQuizService(quizRepo)
	statsService := service.NewStatsService(db.NewQueryExecutor(gormDB), quizRepo, statsCache)
	tutorClient := llm.NewTutorClient(cfg.ThirdParty.TutorURL, cfg.ThirdParty.TutorModel)

	// Initialize Gin router.
	r := gin.Default()
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	ctrl := controller.Controllers{
		Auth:     controller.NewAuthController(authService),
		Course:   controller.NewCourseController(courseService, enrollmentService, exportService, certificateService, userRepo, cfg.Pagination.PageSize),
		Lesson:   controller.NewLessonController(courseService, enrollmentService, userRepo),
		Progress: controller.NewProgressController(progressService, enrollmentService),
		Quiz:     controller.NewQuizController(quizService, userRepo),
		Admin:    controller.NewAdminController(statsService),
		Chat:     controller.NewChatController(tutorClient),
		Webhook:  controller.NewWebhookController(courseRepo, cfg.ThirdParty.MuxWebhookSecret, utilities.GlobalEventBus),
	}

	var authLimiter gin.HandlerFunc
	if cfg.Authentication.RateLimitPerSecond > 0 {
		authLimiter = middleware.RateLimitMiddleware(
			float64(cfg.Authentication.RateLimitPerSecond),
			cfg.Authentication.RateLimitBurst,
		)
	}

	controller.RegisterRoutes(r, ctrl, userRepo.TokenVersion, authLimiter)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	utilities.Info("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("GCSEPal", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("GCSEPal API (v%s)\n\n", version)
}
