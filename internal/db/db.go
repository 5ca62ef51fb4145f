package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gcsepal-backend/internal/config"
	"gcsepal-backend/utilities"
)

var conn *gorm.DB

// InitDBFromConfig opens the postgres connection described by cfg and
// applies the pool settings.
func InitDBFromConfig(cfg *config.APIConfig) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		cfg.DB.Host, cfg.DB.Username, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port, cfg.DB.SSLMode, cfg.Context.TimeZone)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		utilities.Error("failed to connect to database: %v", err)
		panic(err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		panic(err)
	}
	if cfg.DB.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.Pool.MaxOpenConns)
	}
	if cfg.DB.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.Pool.MaxIdleConns)
	}
	if cfg.DB.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.Pool.ConnMaxLifetime) * time.Second)
	}

	conn = database
	utilities.Info("database connection established (%s:%d/%s)", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
}

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	return conn
}
