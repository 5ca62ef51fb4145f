// Command migrate moves data from the legacy GCSEPal database into the
// current schema. It is safe to interrupt and re-run: completed phases
// are skipped and partially completed phases resume where they stopped.
//
// Usage:
//
//	migrate -source "<legacy postgres dsn>" [-config config.xml] [-rollback]
package main

import (
	"flag"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gcsepal-backend/internal/config"
	"gcsepal-backend/internal/db"
	"gcsepal-backend/internal/migration"
	"gcsepal-backend/internal/model"
	"gcsepal-backend/utilities"
)

func main() {
	sourceDSN := flag.String("source", "", "postgres DSN of the legacy database")
	configPath := flag.String("config", "config.xml", "path to the XML config holding the destination database")
	rollback := flag.Bool("rollback", false, "remove previously migrated rows instead of migrating")
	flag.Parse()

	if *sourceDSN == "" {
		log.Fatal("missing required -source flag")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	utilities.InitLogger(cfg.Context.LogDir)
	defer utilities.SyncLogger()

	source, err := gorm.Open(postgres.Open(*sourceDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("failed to connect to legacy database: %v", err)
	}

	db.InitDBFromConfig(cfg)
	dest := db.GetDB()

	m := migration.NewMigrator(source, dest)

	if *rollback {
		if err := m.Rollback(); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		return
	}

	// The destination schema must exist before rows can land in it.
	err = dest.AutoMigrate(
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
		log.Fatalf("failed to prepare destination schema: %v", err)
	}

	if err := m.Run(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
